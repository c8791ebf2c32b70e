package cli

import (
	"errors"
	"strconv"
	"strings"
)

var errUsage = errors.New("bad arguments")

// pageSize is how many rows one listing page shows.
const pageSize = 20

func argID(args []string, i int) (int64, error) {
	if i >= len(args) {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}

func argInt(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errUsage
	}
	return n, nil
}

// optInt returns args[i] as an int, or def when it is absent.
func optInt(args []string, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	return argInt(args, i)
}

// pageArgs turns a 1-based page number into skip and limit.
func pageArgs(page int) (skip, limit int, err error) {
	if page < 1 {
		return 0, 0, errUsage
	}
	return (page - 1) * pageSize, pageSize, nil
}

func rest(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return strings.Join(args[i:], " ")
}
