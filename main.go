package main

import "github.com/yarlson/go-planner/cmd"

func main() {
	cmd.Execute()
}
