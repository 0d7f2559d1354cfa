package main

import "github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/cmd"

func main() {
	cmd.Execute()
}
