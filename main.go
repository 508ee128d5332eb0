package main

import "github.com/theirongolddev/lifeshock/cmd"

func main() {
	cmd.Execute()
}
