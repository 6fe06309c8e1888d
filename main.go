package main

import "github.com/Manu343726/rvbench/cmd"

func main() {
	cmd.Execute()
}
