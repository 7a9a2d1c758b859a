package main

import "github.com/oshokin/client-release/cmd/client-release/cmd"

func main() {
	cmd.Execute()
}
