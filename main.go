package main

import "github.com/cinelens/cinelens/cmd"

func main() {
	cmd.Execute()
}
