package main

import "geoclip-service/cmd"

func main() {
	cmd.Execute()
}
