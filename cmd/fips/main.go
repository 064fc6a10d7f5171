package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

const usage = `usage:
  fips decode <code>          unpack a packed decimal code
  fips parse <kind> <id>      parse a dataset id (home, workplace, school, tract)
  fips region <geoid>         parse a 2, 5 or 11 digit GEOID
  fips states                 list the state table
`

func main() {
	asJSON := flag.Bool("json", false, "print JSON")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "decode":
		err = decode(args[1:], *asJSON)
	case "parse":
		err = parse(args[1:], *asJSON)
	case "region":
		err = region(args[1:], *asJSON)
	case "states":
		for _, s := range fips.AllStates() {
			fmt.Printf("%02d %s %s\n", s.Code(), s, s.Name())
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func decode(args []string, asJSON bool) error {
	if len(args) != 1 {
		return fmt.Errorf("decode takes one code")
	}
	c, err := fips.ParseCode(args[0])
	if err != nil {
		return err
	}
	return show(c, "", asJSON)
}

func parse(args []string, asJSON bool) error {
	if len(args) != 2 {
		return fmt.Errorf("parse takes a kind and an id")
	}
	category, err := fips.ParseCategory(args[0])
	if err != nil {
		return err
	}
	rest, c, err := fips.ParseForCategory(category, args[1])
	if err != nil {
		return err
	}
	return show(c, rest, asJSON)
}

func region(args []string, asJSON bool) error {
	if len(args) != 1 {
		return fmt.Errorf("region takes one GEOID")
	}
	c, level, err := fips.ParseRegion(args[0])
	if err != nil {
		return err
	}
	lo, hi := c.Range(level)
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"level": level,
			"code":  c,
			"lo":    lo,
			"hi":    hi,
		})
	}
	fmt.Printf("%s (%s)\nrange %d..%d\n", c, level, lo.Uint64(), hi.Uint64())
	return nil
}

func show(c fips.Code, rest string, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"code":     c,
			"expanded": c.Expand(),
			"geoid":    c.GEOID(),
			"rest":     rest,
		})
	}
	fmt.Println(strconv.FormatUint(c.Uint64(), 10))
	fmt.Println(c)
	if rest != "" {
		fmt.Printf("unparsed: %q\n", rest)
	}
	return nil
}
