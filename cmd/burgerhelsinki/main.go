package main

import "github.com/example/burger-helsinki/cmd"

func main() {
	cmd.Execute()
}
