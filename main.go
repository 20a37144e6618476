package main

import "github.com/frahmantamala/certification-management/cmd"

func main() {
	cmd.Execute()
}
