package main

import "github.com/fleetora/admin-gateway/cmd"

func main() {
	cmd.Execute()
}
