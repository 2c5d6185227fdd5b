package main

import "github.com/Fatimaq07/Humans-WInning-AI/cmd"

func main() {
	cmd.Execute()
}
