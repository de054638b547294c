package main

import "shotsort/cmd"

func main() {
	cmd.Execute()
}
