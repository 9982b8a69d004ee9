package main

import (
	"os"

	"github.com/cqNikolaus/JenkinsLLM/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
