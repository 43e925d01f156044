// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"fmt"
)

func ExampleToggle() {
	var tg Toggle
	fmt.Printf("%q\n", tg.Ready(context.Background()))

	tg.NotReady("draining connections")
	fmt.Printf("%q\n", tg.Ready(context.Background()))
	// Output: ""
	// "draining connections"
}

func ExampleAll() {
	var a Toggle
	var b Toggle
	b.NotReady(Unavailable("cache"))

	c := All(&a, &b)
	fmt.Println(c.Ready(context.Background()))
	// Output: cache is unavailable
}
