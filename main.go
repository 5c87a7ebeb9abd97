package main

import "inventory-import/cmd"

func main() {
	cmd.Execute()
}
