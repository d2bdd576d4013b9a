// Command teammesh runs hierarchical agent teams described by a topology
// file.
package main

func main() {
	Execute()
}
