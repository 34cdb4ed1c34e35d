package main

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bgrewell/usage"
	disc "github.com/rstms/disc-kit"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
)

func generateFileMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("open_and_verify"),
		usage.WithApplicationDescription("open_and_verify is a functional testing application that is part of disc-kit and is designed to verify that extracting a disc to a directory produces the same bytes as reading every file through the filesystem."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	rm := u.AddBooleanOption("rm", "remove-test-dir", true, "Remove the extraction directory after running the tests", "", nil)
	input := u.AddArgument(1, "input", "The disc image to run the tests against", "")
	descriptor := u.AddArgument(2, "descriptor", "Optional cue sheet or media descriptor", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if input == nil || *input == "" {
		u.PrintError(fmt.Errorf("location of the input image <input> must be provided"))
		os.Exit(1)
	}
	descriptorPath := ""
	if descriptor != nil {
		descriptorPath = *descriptor
	}

	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_DEBUG, true))
	d, err := disc.Open(*input, descriptorPath, option.WithLogger(logger))
	if err != nil {
		fmt.Printf("Failed to open image: %s\n", err)
		os.Exit(1)
	}
	defer d.Close()

	dir, err := os.MkdirTemp("", "open_and_verify_test_*")
	if err != nil {
		fmt.Printf("Failed to create temporary directory: %s\n", err)
		os.Exit(1)
	}
	if *rm {
		defer os.RemoveAll(dir)
	} else {
		fmt.Printf("Extraction directory: %s\n", dir)
	}

	if err := d.ExtractAll(dir); err != nil {
		fmt.Printf("Failed to extract image: %s\n", err)
		os.Exit(1)
	}

	fs := d.FileSystem()
	checked, failed := 0, 0
	err = fs.Walk(fs.RootDir(), func(p string, rec *directory.Record) error {
		if rec.IsDirectory() {
			return nil
		}
		data, err := fs.ExtractFile(rec)
		if err != nil {
			return err
		}
		want := fmt.Sprintf("%x", md5.Sum(data))
		got, err := generateFileMD5(filepath.Join(dir, filepath.FromSlash(p)))
		if err != nil {
			return err
		}
		checked++
		if want != got {
			failed++
			fmt.Printf("MD5 mismatch for %s:\n  Filesystem: %s\n  Extracted:  %s\n", p, want, got)
		}
		return nil
	})
	if err != nil {
		fmt.Printf("Failed to verify image: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d files checked, %d mismatches\n", checked, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
