package moderation

import "buildhub/internal/model"

// BuildTree turns a flat, time-ordered comment list into a forest. Comments
// without a parent are roots; a comment whose parent is not in the list is
// dropped together with its replies. Input order is kept at every level.
// The returned nodes are copies, the input is left untouched.
func BuildTree(comments []*model.Comment) []*model.Comment {
	nodes := make(map[string]*model.Comment, len(comments))
	ordered := make([]*model.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		node := *c
		node.Replies = nil
		nodes[node.ID] = &node
		ordered = append(ordered, &node)
	}

	roots := make([]*model.Comment, 0)
	for _, node := range ordered {
		if node.ParentID == nil || *node.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		if *node.ParentID == node.ID {
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return roots
}

// Walk visits every node reachable from roots, depth first.
func Walk(roots []*model.Comment, fn func(c *model.Comment, depth int)) {
	var visit func(nodes []*model.Comment, depth int)
	visit = func(nodes []*model.Comment, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Replies, depth+1)
		}
	}
	visit(roots, 0)
}
