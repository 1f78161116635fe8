package main

import "github.com/arko-chat/geobridge/internal/cli"

func main() {
	cli.Execute()
}
