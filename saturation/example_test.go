package saturation_test

import (
	"fmt"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/egraph"
	"github.com/katalvlaran/foresight/extract"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/pattern"
	"github.com/katalvlaran/foresight/rewrite"
	"github.com/katalvlaran/foresight/saturation"
)

// Example saturates a small arithmetic term under commutativity and
// extracts the (unchanged, already minimal) best tree.
func Example() {
	g := egraph.New()
	root, g, _ := g.AddTree(core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")))

	commute := rewrite.MustRule("add-commute",
		pattern.NewNode("add", pattern.NewVar("x"), pattern.NewVar("y")),
		pattern.NewNode("add", pattern.NewVar("y"), pattern.NewVar("x")),
	)
	g, err := saturation.Run(
		saturation.RepeatUntilStable(saturation.NewMaximal([]rewrite.Rule{commute})),
		g, parallel.Sequential(),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	best, _ := extract.NewBottomUp(nil).Extract(root, g)
	fmt.Println("classes:", g.ClassCount())
	fmt.Println("best size:", best.Size())
	// Output:
	// classes: 3
	// best size: 3
}

// ExampleOptions_Build assembles a strategy stack from configuration.
func ExampleOptions_Build() {
	opts, _ := saturation.LoadOptions([]byte("iteration_limit: 8\nparallelism: sequential\ncaching: true\n"))
	pm, _ := opts.ParallelMap()

	g := egraph.New()
	_, g, _ = g.AddTree(core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")))

	commute := rewrite.MustRule("add-commute",
		pattern.NewNode("add", pattern.NewVar("x"), pattern.NewVar("y")),
		pattern.NewNode("add", pattern.NewVar("y"), pattern.NewVar("x")),
	)
	final, err := saturation.Run(opts.Build([]rewrite.Rule{commute}), g, pm)
	fmt.Println("err:", err)
	fmt.Println("classes:", final.ClassCount())
	// Output:
	// err: <nil>
	// classes: 3
}
