package xclassify_test

import (
	"fmt"

	"github.com/omeyang/xoui/pkg/oui/xclassify"
)

func ExampleRules_Classify() {
	rules := xclassify.DefaultRules()
	for _, digits := range []string{"FFFFFFFFFFFF", "33330A000001", "4EAAAA000000"} {
		m, _ := rules.Classify(digits)
		fmt.Printf("%s %s (%s)\n", m.Prefix, m.Label, m.Class)
	}
	// Output:
	// FFFFFFFFFFFF Broadcast (broadcast)
	// 33330A000001 IPv6 Multicast (protocol-range)
	// 4EAAAA000000 Locally administered (locally-administered)
}
