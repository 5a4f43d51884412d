package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/lmorg/readline"
	"github.com/mattn/go-isatty"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/pkgs"
)

var errColor = color.New(color.FgRed)

func main() {
	log.SetFlags(0)
	var (
		inname, fn string
		with       [][2]string
		nl, echo   bool
		glsl       bool
		prec       int
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.IntVar(&prec, "p", 64, "precision of calculations in bits")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.BoolVar(&glsl, "glsl", false, "print GLSL functions instead of values")
	flag.StringVar(&fn, "func", "f", "name of generated GLSL functions")
	flag.Parse()
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}

	ctx := mathexpr.NewContext(pkgs.Default(), mathexpr.Prec(uint(prec)))
	for _, d := range with {
		if err := define(ctx, d[0], d[1], glsl); err != nil {
			log.Fatalf("setting %s: %v", d[0], err)
		}
	}
	run := func(a *mathexpr.Expr) {
		if echo {
			fmt.Printf("%v : ", a)
		}
		if glsl {
			src, err := ctx.Shader(a, fn)
			if err != nil {
				errColor.Fprintln(os.Stderr, err)
				return
			}
			fmt.Print(src)
			return
		}
		r, err := ctx.Eval(a)
		if err != nil {
			errColor.Fprintln(os.Stderr, err)
			return
		}
		fmt.Println(ctx.Format(r))
	}

	if inname == "" && flag.NArg() == 0 && isatty.IsTerminal(os.Stdin.Fd()) {
		repl(run)
		return
	}

	var ins []io.RuneScanner
	f, err := infile(inname, flag.NArg() == 0)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		ins = append(ins, f)
	}
	for _, arg := range flag.Args() {
		ins = append(ins, strings.NewReader(arg))
	}

	var p []*mathexpr.Expr
	var opts []mathexpr.ParseOption
	if nl {
		opts = append(opts, mathexpr.StopOn('\n'))
	}
	for _, in := range ins {
		for {
			// First check whether we're done with the input.
			if _, _, err := in.ReadRune(); err != nil {
				if err == io.EOF {
					break
				}
				log.Fatal(err)
			}
			in.UnreadRune()
			a, err := mathexpr.Parse(in, opts...)
			if err != nil {
				log.Fatal(err)
			}
			p = append(p, a)
		}
	}
	for _, a := range p {
		run(a)
	}
}

// define sets a variable to the value of an expression. For shaders, the
// variable is the expression's GLSL form, which must need no statements.
func define(ctx *mathexpr.Context, name, src string, glsl bool) error {
	a, err := mathexpr.ParseString(src)
	if err != nil {
		return err
	}
	if glsl {
		g := mathexpr.NewGlslContext()
		v, err := ctx.Glsl(a.Root(), g)
		if err != nil {
			return err
		}
		if g.Block() != "" || g.Helpers() != "" {
			return fmt.Errorf("%s is too complex to inline", src)
		}
		ctx.SetGlsl(name, v)
		return nil
	}
	r, err := ctx.Eval(a)
	if err != nil {
		return err
	}
	ctx.Set(name, r)
	return nil
}

// repl reads and runs expressions interactively until EOF or interrupt.
func repl(run func(*mathexpr.Expr)) {
	rline := readline.NewInstance()
	rline.SetPrompt("> ")
	for {
		line, err := rline.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		a, err := mathexpr.ParseString(line)
		if err != nil {
			errColor.Println(err)
			continue
		}
		run(a)
	}
}

func infile(inname string, std bool) (io.RuneScanner, error) {
	var f *os.File
	switch {
	case inname != "" && inname != "-":
		in, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		f = in
	case inname == "-", std:
		f = os.Stdin
	}
	if f == nil {
		return nil, nil
	}
	return bufio.NewReader(f), nil
}
