package main

import "github.com/theirongolddev/ocstats/cmd"

func main() {
	cmd.Execute()
}
