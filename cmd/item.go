package cmd

import (
	"errors"
	"fmt"
	"strings"

	"inventory-import/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// itemCmd shows what an import left behind for one SKU.
var itemCmd = &cobra.Command{
	Use:   "item [sku]",
	Short: "View the inventory items stored under a SKU",
	Long:  `Looks up every item with the given SKU, oldest first. Create mode may leave duplicates.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		logg := rt.logger
		defer logg.Sync()

		if rt.db == nil {
			return errors.New("inventory database is unavailable")
		}

		store := inventory.NewGormStore(rt.db, logg)
		logg.Info("Looking up items...", zap.String("sku", args[0]))
		items, err := store.FindBySKU(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println("\n--- Inventory Item View ---")
		fmt.Printf("SKU:            %s\n", args[0])
		fmt.Printf("Matches:        %d\n", len(items))
		for _, it := range items {
			fmt.Println("---------------------------")
			fmt.Printf("ID:             %s\n", it.ID)
			fmt.Printf("Name:           %s\n", it.Name)
			fmt.Printf("Category:       %s\n", it.Category)
			fmt.Printf("Supplier:       %s\n", it.Supplier)
			fmt.Printf("Quantity:       %d\n", it.Quantity)
			fmt.Printf("Cost Price:     %.2f\n", it.CostPrice)
			fmt.Printf("Selling Price:  %.2f\n", it.SellingPrice)
			fmt.Printf("Active:         %v\n", it.Active)
			fmt.Printf("Tags:           %s\n", strings.Join(it.TagList(), ", "))
			fmt.Printf("Updated:        %s\n", it.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Println("---------------------------")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(itemCmd)
}
