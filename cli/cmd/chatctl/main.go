package main

import "github.com/Hicham-Azeroual/chatApplication/cli/internal/cmd"

func main() {
	cmd.Execute()
}
