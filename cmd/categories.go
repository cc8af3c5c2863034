package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Income and expenditure distribution by category",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	_, filtered, filter, ok, err := loadFiltered()
	if err != nil || !ok {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(filterTitle("CATEGORIES", filter)))
	fmt.Println()

	if filter.HasCategory() {
		fmt.Println(cli.RenderNote(fmt.Sprintf("Filtered to %q; clear --category to see the distribution.", filter.Category)))
		fmt.Println()
		return nil
	}

	printCategoryTable(pipeline.Income, pipeline.AggregateCategories(filtered, pipeline.Income))
	printCategoryTable(pipeline.Expenses, pipeline.AggregateCategories(filtered, pipeline.Expenses))
	return nil
}

func printCategoryTable(side pipeline.Side, cats []model.CategoryStats) {
	title := "Income by Category"
	if side == pipeline.Expenses {
		title = "Expenditure by Category"
	}
	if len(cats) == 0 {
		fmt.Println(cli.RenderNote(fmt.Sprintf("No %s records.", side)))
		fmt.Println()
		return
	}

	maxAmount := cats[0].Amount.InexactFloat64()
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		bar := strings.TrimSpace(cli.RenderHorizontalBar("", c.Amount.InexactFloat64(), maxAmount, 0, 20))
		rows = append(rows, []string{
			c.Category,
			cli.FormatMoney(c.Amount),
			cli.FormatNumber(int64(c.Count)),
			cli.FormatPercent(c.SharePercent),
			bar,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Category", "Amount", "Count", "Share", ""},
		Rows:    rows,
	}))
	fmt.Println()
}
