/*
Package glance is a modular pixel-processing library. It provides a generic,
strided pixel buffer together with the point operations, linear filters,
non-linear filters and morphological operations running over it, all of them
executed in parallel over disjoint row-bands of the buffer.

The package provides a command line interface, supporting various flags for
the different processing stages. To check the supported commands type:

	$ glance --help

In case you wish to integrate the API in a self constructed environment here
is a simple example:

	package main

	import (
		"fmt"
		"github.com/glancelib/glance"
	)

	func main() {
		p := glance.NewProcessor()
		p.BlurRadius = 2
		p.Grayscale = true

		if err := p.Process(in, out); err != nil {
			fmt.Printf("Error processing image: %s", err.Error())
		}
	}
*/
package glance
