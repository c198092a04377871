package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fitvault/fitvault/internal/app"
	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/vault"
)

var (
	photoFoodName string
	photoNotes    string
	photoCalories int
	photoProtein  float64
	photoCarbs    float64
	photoFat      float64
	photoOut      string
)

var photoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Manage encrypted meal photos",
}

var photoImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Encrypt a photo into the vault and record it as a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			uri, err := a.Vault.EncryptAndStore(data, vault.FileMetadata{
				MIME: mime.TypeByExtension(filepath.Ext(args[0])),
				Name: filepath.Base(args[0]),
			})
			if err != nil {
				return err
			}

			photo, err := a.Photos.AddFoodPhoto(models.FoodPhoto{
				URI:      uri,
				FoodName: photoFoodName,
				Notes:    photoNotes,
				Calories: photoCalories,
				ProteinG: photoProtein,
				CarbsG:   photoCarbs,
				FatG:     photoFat,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s as %s\n", args[0], photo.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Encrypted file: %s\n", uri)
			return nil
		})
	},
}

var photoLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List meal photos",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			photos := a.Photos.FoodPhotos()
			if len(photos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No photos yet")
				return nil
			}
			for _, p := range photos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %d kcal\n",
					p.ID, p.Date.Format(models.DateLayout), p.FoodName, p.Calories)
			}
			return nil
		})
	},
}

var photoShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Decrypt a photo to a plain file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			photo, err := a.Photos.FoodPhoto(args[0])
			if err != nil {
				return err
			}
			if !a.Vault.IsEncryptedFile(photo.URI) {
				fmt.Fprintf(cmd.OutOrStdout(), "Photo is stored in plain form: %s\n", photo.URI)
				return nil
			}

			tmp, err := a.Vault.DecryptToTemp(photo.URI)
			if err != nil {
				return err
			}
			if photoOut == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Decrypted to %s (removed on next cleanup)\n", tmp)
				return nil
			}
			if err := copyFile(tmp, photoOut); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Decrypted to %s\n", photoOut)
			return nil
		})
	},
}

var photoRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a meal photo and securely wipe its encrypted file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if err := a.Photos.DeleteFoodPhoto(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func init() {
	rootCmd.AddCommand(photoCmd)
	photoCmd.AddCommand(photoImportCmd, photoLsCmd, photoShowCmd, photoRmCmd)

	photoImportCmd.Flags().StringVar(&photoFoodName, "name", "", "Food name")
	photoImportCmd.Flags().StringVar(&photoNotes, "notes", "", "Notes")
	photoImportCmd.Flags().IntVar(&photoCalories, "calories", 0, "Calories")
	photoImportCmd.Flags().Float64Var(&photoProtein, "protein", 0, "Protein grams")
	photoImportCmd.Flags().Float64Var(&photoCarbs, "carbs", 0, "Carb grams")
	photoImportCmd.Flags().Float64Var(&photoFat, "fat", 0, "Fat grams")

	photoShowCmd.Flags().StringVar(&photoOut, "out", "", "Write decrypted copy to this path")
}
