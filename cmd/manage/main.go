// Command manage runs one-off maintenance tasks against the BuildHub database.
package main

func main() {
	Execute()
}
