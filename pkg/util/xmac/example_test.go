package xmac_test

import (
	"errors"
	"fmt"

	"github.com/omeyang/xoui/pkg/util/xmac"
)

func ExampleParse() {
	for _, s := range []string{
		"24:6d:5e:bb:99:cc",
		"246D.5EBB.99CC",
		"24-6D-5E-00-00-BB-99-DD",
		"24:6D:5E",
	} {
		addr, err := xmac.Parse(s)
		if err != nil {
			fmt.Printf("%s: %v\n", s, errors.Is(err, xmac.ErrInvalidLength))
			continue
		}
		fmt.Printf("%s: %s (%d bits)\n", s, addr.Digits(), addr.Bits())
	}

	// Output:
	// 24:6d:5e:bb:99:cc: 246D5EBB99CC (48 bits)
	// 246D.5EBB.99CC: 246D5EBB99CC (48 bits)
	// 24-6D-5E-00-00-BB-99-DD: 246D5E0000BB99DD (64 bits)
	// 24:6D:5E: true
}

func ExampleAddr_Format() {
	addr := xmac.MustParse("24:6D:5E:BB:99:CC")

	fmt.Println(addr.Format(xmac.NotationNone, xmac.Upper))
	fmt.Println(addr.Format(xmac.NotationPeriod, xmac.Lower))
	fmt.Println(addr.Format(xmac.NotationHyphen, xmac.Upper))
	fmt.Println(addr.Format(xmac.NotationSpace, xmac.Lower))

	// Output:
	// 246D5EBB99CC
	// 246d.5ebb.99cc
	// 24-6D-5E-BB-99-CC
	// 24 6d 5e bb 99 cc
}

func ExampleAddr_LinkLocal() {
	addr := xmac.MustParse("24:6D:5E:BB:99:CC")
	fmt.Println(addr.EUI64Suffix())
	fmt.Println(addr.LinkLocal())

	// Output:
	// 266d:5eff:febb:99cc
	// fe80::266d:5eff:febb:99cc
}

func ExampleFromDecimal() {
	addr, _ := xmac.FromDecimal(40052159388108, 48)
	fmt.Println(addr)

	_, err := xmac.FromDecimal(1<<48, 48)
	fmt.Println(errors.Is(err, xmac.ErrOutOfRange))

	// Output:
	// 24:6D:5E:BB:99:CC
	// true
}

func ExampleAddr_Add() {
	addr := xmac.MustParse("24:6D:5E:BB:99:CC")
	next, _ := addr.Add(1)
	diff, _ := next.Diff(addr)
	fmt.Println(next, diff)

	// Output:
	// 24:6D:5E:BB:99:CD 1
}
