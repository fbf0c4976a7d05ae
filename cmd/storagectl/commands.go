package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/storage"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/types"
	"github.com/andresuchdata/reactive-resume/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func runBucketEnsure(c *cli.Context) error {
	module, err := storageFrom(c)
	if err != nil {
		return err
	}
	return module.Service.Bootstrap(c.Context)
}

func runBucketCheck(c *cli.Context) error {
	module, err := storageFrom(c)
	if err != nil {
		return err
	}

	exists, err := module.Service.BucketExists(c.Context)
	if err != nil {
		return fmt.Errorf("bucket %s is unreachable: %w", module.Service.Bucket(), err)
	}
	if !exists {
		return cli.Exit(fmt.Sprintf("bucket %s does not exist", module.Service.Bucket()), 1)
	}

	fmt.Fprintf(c.App.Writer, "bucket %s is reachable\n", module.Service.Bucket())
	return nil
}

func runList(c *cli.Context) error {
	module, err := storageFrom(c)
	if err != nil {
		return err
	}

	objects, err := module.Service.ListObjects(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
	for _, obj := range objects {
		fmt.Fprintf(w, "%s\t%d\t%s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

type putArgs struct {
	kind  storage.UploadKind
	user  string
	files []string
}

func parsePutArgs(args cli.Args) (putArgs, error) {
	if args.Len() < 3 {
		return putArgs{}, fmt.Errorf("put needs a kind, a user id and at least one file")
	}

	kind, err := storage.ParseUploadKind(args.Get(0))
	if err != nil {
		return putArgs{}, err
	}

	return putArgs{
		kind:  kind,
		user:  args.Get(1),
		files: args.Slice()[2:],
	}, nil
}

// fileStem strips directories and the extension: the service appends the
// extension for the upload kind.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runPut(c *cli.Context) error {
	module, err := storageFrom(c)
	if err != nil {
		return err
	}

	args, err := parsePutArgs(c.Args())
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(max(c.Int("concurrency"), 1))

	for _, file := range args.files {
		file := file
		g.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			url, err := module.Service.UploadObject(ctx, args.user, args.kind, data, fileStem(file))
			if err != nil {
				return fmt.Errorf("upload %s: %w", file, err)
			}

			mu.Lock()
			fmt.Fprintf(c.App.Writer, "%s -> %s\n", file, url)
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

func runRemove(c *cli.Context) error {
	module, err := storageFrom(c)
	if err != nil {
		return err
	}

	prefix := c.Args().First()
	if prefix == "" {
		return cli.Exit("rm needs a prefix", 2)
	}

	if !c.Bool("yes") {
		fmt.Fprintf(c.App.Writer, "Delete every object under %q in bucket %s? [y/N] ", prefix, module.Service.Bucket())
		answer, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			return cli.Exit("aborted", 1)
		}
	}

	removed, err := module.Service.DeleteFolder(c.Context, prefix)
	if err != nil {
		return err
	}

	logger.Log.Info().Str("prefix", prefix).Int("removed", removed).Msg("Deleted folder")
	return nil
}

func runMigrate(c *cli.Context) error {
	db, ok := c.Context.Value(types.DBKey).(*sql.DB)
	if !ok || db == nil {
		return fmt.Errorf("database is not initialised")
	}

	if _, err := db.ExecContext(c.Context, postgres.Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	logger.Log.Info().Msg("Asset ledger schema is up to date")
	return nil
}
