// Package hierarchy holds the three-level GDP tree the treemap is drawn
// from: the world at level 0, regions at level 1 and countries at level 2.
//
// # Loading
//
// [LoadWorldBank] builds the tree from the World Bank bulk download: the GDP
// indicator file (NY.GDP.MKTP.CD), the GDP growth indicator file
// (NY.GDP.MKTP.KD.ZG) and the country metadata file that assigns each
// economy to a region:
//
//	tree, err := hierarchy.LoadWorldBank(gdp, growth, meta, "2023")
//
// Countries without a GDP value or without a growth value for the chosen
// year are left out, as are regions that end up with no countries.
//
// # Querying
//
// A [Tree] indexes the nodes by code and caches the value of every subtree:
//
//	europe, _ := tree.Find("ECS")
//	total := tree.Value(europe)
//	largest := tree.Children(europe)[0]
//
// A Tree is immutable after [NewTree] and safe for concurrent use.
package hierarchy
