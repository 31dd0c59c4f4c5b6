package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/orrery"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	flag.Parse()

	f, err := os.Create("default.pgo")
	if err != nil {
		log.Fatal(err)
	}
	pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	log.Printf("warming up")

	benchmarkChains(true)
	benchmarkTriangle(true)
}

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100}
	iters = 100
)

func addOne(oldValue int) int {
	return oldValue + 1
}

func identity(v int) int {
	return v
}

func sumTwo(a, b int) int {
	return a + b
}

// w independent chains of h explicit derivations hanging off one cell.
// Every write floods all of them.
func benchmarkChains(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Propagation Chains")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rt := orrery.New(func(err error) {
				log.Panic(err)
			})
			src, err := orrery.Observable(rt, 1)
			if err != nil {
				log.Fatal(err)
			}
			tails := make([]*orrery.Derived[int], 0, w)
			for i := 0; i < w; i++ {
				var last orrery.Source = src
				for j := 0; j < h; j++ {
					next, err := orrery.Derivation1(rt, last, addOne)
					if err != nil {
						log.Fatal(err)
					}
					last = next
				}
				tails = append(tails, last.(*orrery.Derived[int]))
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				if err := src.Write(i + 2); err != nil {
					log.Fatal(err)
				}
				tach.AddTime(time.Since(start))
			}

			want := iters + 1 + h
			for _, tail := range tails {
				got, err := tail.Peek()
				if err != nil {
					log.Fatal(err)
				}
				if got != want {
					log.Fatalf("chain %dx%d: got %d, want %d", w, h, got, want)
				}
			}
			if err := rt.Close(); err != nil {
				log.Fatal(err)
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// A triangle where every row derives from adjacent pairs of the row
// above, zero padded at the edges, so each row's sum doubles the
// previous one and the bottom checks out against apex << (rows-1).
func benchmarkTriangle(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Triangle Network")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "nodes", "avg", "min", "p75", "p99", "max"})

	for _, rows := range []int{10, 25, 50} {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		rt := orrery.New(func(err error) {
			log.Panic(err)
		})
		apex, err := orrery.Observable(rt, 1)
		if err != nil {
			log.Fatal(err)
		}

		nodes := 1
		prev := []orrery.Source{apex}
		for r := 1; r < rows; r++ {
			row := make([]orrery.Source, r+1)
			for j := 0; j <= r; j++ {
				var (
					d   *orrery.Derived[int]
					err error
				)
				switch j {
				case 0:
					d, err = orrery.Derivation1(rt, prev[0], identity)
				case r:
					d, err = orrery.Derivation1(rt, prev[r-1], identity)
				default:
					d, err = orrery.Derivation2(rt, prev[j-1], prev[j], sumTwo)
				}
				if err != nil {
					log.Fatal(err)
				}
				row[j] = d
				nodes++
			}
			prev = row
		}

		for i := 0; i < iters; i++ {
			start := time.Now()
			if err := apex.Write(i + 1); err != nil {
				log.Fatal(err)
			}
			tach.AddTime(time.Since(start))
		}

		total := 0
		for _, s := range prev {
			v, err := s.(*orrery.Derived[int]).Peek()
			if err != nil {
				log.Fatal(err)
			}
			total += v
		}
		want := iters << (rows - 1)
		if total != want {
			log.Fatalf("triangle %d rows: got %d, want %d", rows, total, want)
		}
		if err := rt.Close(); err != nil {
			log.Fatal(err)
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				fmt.Sprintf("triangle: %d rows", rows),
				nodes,
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			},
		})
	}

	if shouldRender {
		tbl.Render()
	}
}
