package treemap_test

import (
	"fmt"

	"github.com/matzehuels/gdpmap/pkg/fontmetrics/fontmetricstest"
	"github.com/matzehuels/gdpmap/pkg/hierarchy"
	"github.com/matzehuels/gdpmap/pkg/label"
	"github.com/matzehuels/gdpmap/pkg/treemap"
)

func ExamplePass() {
	growth := 0.025
	tree, _ := hierarchy.NewTree(&hierarchy.Node{Name: "World", Code: "WLD", Children: []*hierarchy.Node{
		{Name: "North America", Code: "NAC", Level: 1, Children: []*hierarchy.Node{
			{Name: "United States", Code: "USA", Level: 2, Value: 27361, Change: &growth},
		}},
	}})

	frame, err := treemap.Pass(tree, treemap.Root(), 960, label.New(fontmetricstest.Settings()))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("%.0fx%.0f\n", frame.Width, frame.Height)
	for _, c := range frame.Cells {
		fmt.Printf("%s %s %q\n", c.Code, c.Role, c.Labels[0].Text)
	}
	// Output:
	// 960x540
	// NAC zoom-in "NORTH AMERICA ›"
	// USA leaf "USA"
}
