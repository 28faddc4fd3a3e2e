package main

import "github.com/edp1096/toy-lti/cmd/lti/cmd"

func main() {
	cmd.Execute()
}
