package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/odvcencio/hubmount/pkg/object"
)

func newLsRefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls-refs [prefix]",
		Short: "List remote refs, optionally narrowed to a prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			refs, err := store.ListRefs(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(refs))
			for name := range refs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s %s\n", refs[name], name)
			}
			return nil
		},
	}
}

func newUpdateRefCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "update-ref <ref> <hash>",
		Short: "Point a ref at a hash, creating it if missing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			hash, err := store.UpdateRef(cmd.Context(), args[0], object.Hash(args[1]), force)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "allow non-fast-forward updates")
	return cmd
}

func newDeleteRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-ref <ref>",
		Short: "Delete a ref (missing refs are a no-op)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			return store.DeleteRef(cmd.Context(), args[0])
		},
	}
}
