package main

import "fieldops-drive/cmd"

func main() {
	cmd.Execute()
}
