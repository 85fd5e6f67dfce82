package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/npywrite/internal/logger"
	"github.com/samcharles93/npywrite/pkg/npy"
)

// resolveDType parses name, falling back to f32 unless strict is set.
func resolveDType(name string, strict bool, log logger.Logger) (npy.DType, error) {
	dt, err := npy.ParseDType(name)
	if err == nil {
		return dt, nil
	}
	if strict {
		return 0, err
	}
	log.Warn("unknown dtype, using default", "dtype", name, "default", npy.DefaultDType.String())
	return npy.DefaultDType, nil
}

func convertAction(o *cliOptions, stdin io.Reader, stdout io.Writer) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Present() {
			return fmt.Errorf("unexpected argument %q (input is read from stdin)", c.Args().First())
		}
		log := logger.FromContext(ctx).With("run", uuid.NewString())

		dt, err := resolveDType(o.dtype, o.strictDType, log)
		if err != nil {
			return err
		}
		opts := npy.Options{
			DType:       dt,
			Separator:   o.separator,
			AllowRagged: o.allowRagged,
		}

		start := time.Now()
		var shape npy.Shape
		if o.output == stdoutPath {
			bw := bufio.NewWriter(stdout)
			shape, err = npy.WriteStream(bw, stdin, opts)
			if err == nil {
				err = bw.Flush()
			}
		} else {
			shape, err = npy.Create(o.output, stdin, opts)
		}
		if err != nil {
			log.Debug("conversion aborted", "rows", shape.Rows, "error", err)
			return err
		}

		log.Debug("wrote array",
			"output", o.output,
			"dtype", dt.String(),
			"shape", shape.String(),
			"bytes", npy.HeaderSize+shape.Elements()*dt.Width(),
			"elapsed", time.Since(start),
		)
		return nil
	}
}
