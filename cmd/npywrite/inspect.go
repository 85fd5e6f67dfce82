package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/npywrite/pkg/npy"
)

type inspectReport struct {
	Path         string   `json:"path"`
	Version      string   `json:"version"`
	Descr        string   `json:"descr"`
	DType        string   `json:"dtype"`
	FortranOrder bool     `json:"fortran_order"`
	Shape        []int    `json:"shape"`
	HeaderLen    int      `json:"header_len"`
	DataOffset   int      `json:"data_offset"`
	DataBytes    int      `json:"data_bytes"`
	Elements     int      `json:"elements"`
	Checksum     string   `json:"xxhash64"`
	Head         []string `json:"head,omitempty"`
}

func inspectCmd(stdout io.Writer) *cli.Command {
	var (
		asJSON bool
		head   int
	)

	return &cli.Command{
		Name:         "inspect",
		Usage:        "Print the header and data summary of a .npy file",
		ArgsUsage:    "FILE",
		OnUsageError: usageError,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON", Destination: &asJSON},
			&cli.IntFlag{Name: "head", Usage: "print the first N elements", Value: 0, Destination: &head},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("inspect: missing FILE")
			}

			f, err := npy.Open(path)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			report := buildReport(path, f, head)
			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(stdout, report)
		},
	}
}

func buildReport(path string, f *npy.File, head int) inspectReport {
	h := f.Header
	r := inspectReport{
		Path:         path,
		Version:      fmt.Sprintf("%d.%d", h.Major, h.Minor),
		Descr:        h.Descr,
		DType:        h.DType.String(),
		FortranOrder: h.FortranOrder,
		Shape:        h.Shape,
		HeaderLen:    h.HeaderLen,
		DataOffset:   h.DataOffset(),
		DataBytes:    h.DataSize(),
		Elements:     h.Elements(),
		Checksum:     strconv.FormatUint(f.Checksum(), 16),
	}
	for i := range min(head, r.Elements) {
		r.Head = append(r.Head, f.Format(i))
	}
	return r
}

func printReport(w io.Writer, r inspectReport) error {
	shape := make([]string, len(r.Shape))
	for i, d := range r.Shape {
		shape[i] = strconv.Itoa(d)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "file:          %s\n", r.Path)
	fmt.Fprintf(&b, "version:       %s\n", r.Version)
	fmt.Fprintf(&b, "descr:         %s (%s)\n", r.Descr, r.DType)
	fmt.Fprintf(&b, "fortran_order: %t\n", r.FortranOrder)
	fmt.Fprintf(&b, "shape:         (%s)\n", strings.Join(shape, ", "))
	fmt.Fprintf(&b, "header:        %d bytes, data at offset %d\n", r.HeaderLen, r.DataOffset)
	fmt.Fprintf(&b, "data:          %d bytes, %d elements\n", r.DataBytes, r.Elements)
	fmt.Fprintf(&b, "xxhash64:      %s\n", r.Checksum)
	if len(r.Head) > 0 {
		fmt.Fprintf(&b, "head:          %s\n", strings.Join(r.Head, " "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
