package main

import "github.com/nikogura/cv-builder/cmd"

func main() {
	cmd.Execute()
}
