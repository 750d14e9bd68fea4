package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/odvcencio/hubmount/pkg/object"
)

func newCatFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat-file <type> <hash>",
		Short: "Print an object from the remote store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			objType := object.ObjectType(args[0])
			hash := object.Hash(args[1])

			obj, err := store.Load(cmd.Context(), objType, hash)
			if err != nil {
				return err
			}
			switch v := obj.(type) {
			case *object.Blob:
				_, err = os.Stdout.Write(v.Data)
				return err
			case object.Tree:
				names := make([]string, 0, len(v))
				for name := range v {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					entry := v[name]
					fmt.Printf("%06o %s %s\t%s\n", uint32(entry.Mode), entry.Mode.Kind(), entry.Hash, name)
				}
				return nil
			case *object.Commit:
				os.Stdout.Write(object.MarshalCommit(v))
				return nil
			case *object.Tag:
				os.Stdout.Write(object.MarshalTag(v))
				return nil
			default:
				return fmt.Errorf("unexpected object %T", obj)
			}
		},
	}
}

func newHasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "has <hash>",
		Short: "Check whether the remote stores an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			ok, err := store.HasHash(cmd.Context(), object.Hash(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
}
