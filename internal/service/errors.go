package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidRole        = errors.New("invalid role")

	ErrForbidden = errors.New("you do not have permission to do this")

	ErrPostNotFound     = errors.New("post not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrDuplicateSlug    = errors.New("an entry with this slug already exists")

	ErrCommentNotFound    = errors.New("comment not found")
	ErrParentNotFound     = errors.New("parent comment not found")
	ErrParentMismatch     = errors.New("parent comment does not belong to this post")
	ErrCommentsClosed     = errors.New("comments are closed for this post")
	ErrInvalidContent     = errors.New("comment must be between 1 and 5000 characters")
	ErrAuthorRequired     = errors.New("name and a valid email are required to comment")
	ErrInvalidStatus      = errors.New("invalid moderation status")
	ErrReactionNotAllowed = errors.New("only approved comments can be rated")

	ErrRuleNotFound = errors.New("moderation rule not found")
	ErrInvalidRule  = errors.New("invalid moderation rule")

	ErrSubscriberNotFound = errors.New("subscription not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNewsletterNotFound = errors.New("newsletter not found")
	ErrNewsletterSent     = errors.New("newsletter has already been sent")

	ErrProjectNotFound   = errors.New("project not found")
	ErrDiaryNotFound     = errors.New("diary entry not found")
	ErrInvalidDiaryEntry = errors.New("invalid diary entry")
	ErrUploadsDisabled   = errors.New("image uploads are not configured")
	ErrQueryTooShort     = errors.New("search query must be at least 2 characters")
)
