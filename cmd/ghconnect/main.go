package main

import "ghconnect/internal/cmd"

func main() {
	cmd.Execute()
}
