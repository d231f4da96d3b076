// Package catalog holds the fixed mapping from sheet codes to the folders
// their archives are unpacked into.
package catalog

import (
	"fmt"

	"github.com/Fuabioo/unsheet/internal/errors"
)

// Entry pairs a sheet code with its archive and destination folder.
type Entry struct {
	Code    string `json:"code"`
	Archive string `json:"archive"`
	Folder  string `json:"folder"`
}

// order is the processing order. It is not derived from the map.
var order = []string{"01", "02", "03", "04", "06", "07", "08", "09", "10", "12", "13"}

// folders maps each code to its destination folder name.
// "desision-tree" is the on-disk name and must not be corrected.
var folders = map[string]string{
	"01": "bayes-decision",
	"02": "parameter-estimation",
	"03": "fisher-discriminant",
	"04": "pca",
	"06": "svm",
	"07": "model-selection",
	"08": "neural-networks-1",
	"09": "neural-networks-2",
	"10": "desision-tree",
	"12": "clustering",
	"13": "kernel-ridge-regression",
}

// Codes returns every known code in processing order.
func Codes() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Folder returns the destination folder for code.
func Folder(code string) (string, bool) {
	name, ok := folders[code]
	return name, ok
}

// ArchiveName returns the conventional archive file name for code.
func ArchiveName(code string) string {
	return fmt.Sprintf("sheet%s.zip", code)
}

// Entries returns every catalog entry in processing order.
func Entries() []Entry {
	entries := make([]Entry, 0, len(order))
	for _, code := range order {
		entries = append(entries, entry(code))
	}
	return entries
}

// Select returns the entries for the given codes in processing order,
// regardless of the order they were requested in. Duplicates are collapsed.
// With no codes it returns the whole catalog.
func Select(codes ...string) ([]Entry, error) {
	if len(codes) == 0 {
		return Entries(), nil
	}

	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		if _, ok := folders[code]; !ok {
			return nil, errors.UnknownCode(code)
		}
		wanted[code] = true
	}

	var entries []Entry
	for _, code := range order {
		if wanted[code] {
			entries = append(entries, entry(code))
		}
	}
	return entries, nil
}

func entry(code string) Entry {
	return Entry{
		Code:    code,
		Archive: ArchiveName(code),
		Folder:  folders[code],
	}
}
