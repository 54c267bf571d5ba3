package main

import "github.com/audiolibrelab/taperecorder/cmd"

func main() {
	cmd.Execute()
}
