// cub_inspect prints information about the CUB-200-2011 dataset: split sizes, class distribution
// and the annotations of individual examples. It can also plot the class histogram and export the
// annotations of a split to CSV.
//
// Example:
//
//	cub_inspect -data=~/work/CUB_200_2011 -split=test -summary -classes -example=3 -keypoints
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/cub200/pkg/cub"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagDataDir = flag.String("data", cub.AutoDir,
		fmt.Sprintf("Directory with the extracted CUB_200_2011 dataset. If set to %q it is downloaded "+
			"under $%s (default %q).", cub.AutoDir, cub.DatasetRootEnv, cub.DefaultDatasetRoot))
	flagProbMapDir = flag.String("prob_map_dir", cub.AutoDir,
		fmt.Sprintf("Directory with the extracted segmentations. If set to %q it is downloaded like -data. "+
			"Only used with -prob_map.", cub.AutoDir))
	flagSplit = cub.SplitTrainTest

	flagSummary   = flag.Bool("summary", false, "Display a summary of the split: number of images, classes and keypoints.")
	flagClasses   = flag.Bool("classes", false, "Lists the classes with the number of examples of each in the split.")
	flagExample   = flag.Int("example", -1, "Index of an example of the split to display. Negative values disable it.")
	flagKeypoints = flag.Bool("keypoints", false, "With -example, lists the keypoints (parts) of the example.")
	flagBBox      = flag.Bool("bbox", false, "With -example, displays the bounding box of the example.")
	flagProbMap   = flag.Bool("prob_map", false, "With -example, reads the probability map (segmentation) of the example.")
	flagPlot      = flag.String("plot", "", "If set, saves a histogram of the number of examples per class to the given file (.png, .svg or .pdf).")
	flagCSV       = flag.String("csv", "", "If set, exports the annotations of the split to the given CSV file.")
)

func init() {
	flag.Var(&flagSplit, "split", fmt.Sprintf("Split of the dataset, one of %q.", cub.SplitStrings()))
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q. See 'cub_inspect -help'.", flag.Args())
		os.Exit(1)
	}
	if !*flagSummary && !*flagClasses && *flagExample < 0 && *flagPlot == "" && *flagCSV == "" {
		*flagSummary = true
	}
	report()
}

func report() {
	config := cub.DefaultConfig()
	config.DataDir = *flagDataDir
	config.Split = flagSplit
	config.ReturnBBox = true
	ds := must.M1(cub.NewLabelDataset(config))
	labelNames := must.M1(ds.LabelNames())

	if *flagSummary {
		fmt.Println(titleStyle.Render("Summary"))
		table := newPlainTable(false)
		table.Row("data", ds.DataDir)
		table.Row("split", ds.Split.String())
		table.Row("# examples", humanize.Comma(int64(ds.Len())))
		var numClasses int
		for _, count := range ds.ClassCounts() {
			if count > 0 {
				numClasses++
			}
		}
		table.Row("# classes", humanize.Comma(int64(numClasses)))
		table.Row("# keypoints", strconv.Itoa(cub.NumKeypoints))
		fmt.Println(table.Render())
	}

	if *flagClasses {
		fmt.Println(titleStyle.Render("Classes"))
		table := newPlainTable(true, lipgloss.Right, lipgloss.Left, lipgloss.Right)
		table.Headers("Label", "Name", "# Examples")
		for label, count := range ds.ClassCounts() {
			table.Row(strconv.Itoa(label), labelNames[label], humanize.Comma(int64(count)))
		}
		fmt.Println(table.Render())
	}

	if *flagExample >= 0 {
		reportExample(ds, labelNames, *flagExample)
	}

	if *flagPlot != "" {
		must.M(plotClassHistogram(ds, *flagPlot))
		fmt.Printf("Class histogram saved to %q\n", *flagPlot)
	}

	if *flagCSV != "" {
		must.M(exportCSV(ds, *flagCSV))
		fmt.Printf("Annotations of split %s saved to %q\n", ds.Split, *flagCSV)
	}
}

// reportExample prints the annotations of example idx of ds, and optionally its keypoints and probability map.
func reportExample(ds *cub.LabelDataset, labelNames []string, idx int) {
	example := must.M1(ds.Get(idx))
	img := example.Values[0].(*cub.Image)
	label := example.Values[1].(int32)

	fmt.Println(titleStyle.Render(fmt.Sprintf("Example #%d", idx)))
	table := newPlainTable(false)
	table.Row("image_id", strconv.Itoa(ds.ImageID(idx)))
	table.Row("path", ds.Path(idx))
	table.Row("size", fmt.Sprintf("%d x %d", img.Width, img.Height))
	table.Row("label", fmt.Sprintf("%d (%s)", label, labelNames[label]))
	if *flagBBox {
		box := ds.BBox(idx)
		table.Row("bbox", fmt.Sprintf("(y_min=%g, x_min=%g, y_max=%g, x_max=%g)", box[0], box[1], box[2], box[3]))
		table.Row("bbox size", fmt.Sprintf("%g x %g", box.Width(), box.Height()))
	}
	if *flagProbMap {
		config := cub.DefaultConfig()
		config.DataDir = ds.DataDir
		config.Split = ds.Split
		config.ProbMapDir = *flagProbMapDir
		config.ReturnProbMap = true
		withProbMap := must.M1(cub.NewLabelDataset(config))
		probMap := must.M1(withProbMap.ProbMap(withProbMap.IndexOf(ds.Path(idx))))
		var sum float64
		var numForeground int
		for _, v := range probMap.Values {
			sum += float64(v)
			if v >= 0.5 {
				numForeground++
			}
		}
		table.Row("prob_map mean", fmt.Sprintf("%.3f", sum/float64(len(probMap.Values))))
		table.Row("prob_map >= 0.5", fmt.Sprintf("%.1f%%", 100*float64(numForeground)/float64(len(probMap.Values))))
	}
	fmt.Println(table.Render())

	if *flagKeypoints {
		reportKeypoints(ds, idx)
	}
}

// reportKeypoints prints the parts of example idx of ds. Invisible parts are highlighted.
func reportKeypoints(ds *cub.LabelDataset, idx int) {
	config := cub.DefaultConfig()
	config.DataDir = ds.DataDir
	config.Split = ds.Split
	kpDS := must.M1(cub.NewKeypointDataset(config))
	kp := kpDS.Keypoints(kpDS.IndexOf(ds.Path(idx)))
	partNames := must.M1(kpDS.PartNames())

	fmt.Println(titleStyle.Render("Keypoints"))
	table := newMarkedTable(true, lipgloss.Right, lipgloss.Left, lipgloss.Right, lipgloss.Right, lipgloss.Center)
	table.Table.Headers("Part", "Name", "Y", "X", "Visible")
	for part, name := range partNames {
		visible := kp.Visible[part]
		table.Row(!visible, strconv.Itoa(part+1), name,
			fmt.Sprintf("%g", kp.Points[part][0]), fmt.Sprintf("%g", kp.Points[part][1]), strconv.FormatBool(visible))
	}
	fmt.Println(table.Table.Render())
}
