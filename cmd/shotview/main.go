package main

import "github.com/OpenTraceLab/ShotView/cmd/shotview/cmd"

func main() {
	cmd.Execute()
}
