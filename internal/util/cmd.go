// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

// This package is dedicated to exec.Command related calls and source editing
package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// Run go env and return all it's contents
func GoEnv() (map[string]string, error) {
	cmd := exec.Command("go", "env", "-json")
	out, err := runout(cmd)
	if err != nil {
		return nil, fmt.Errorf("%v\n %w", out, err)
	}

	var env map[string]string
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		return nil, err
	}

	return env, nil
}

// Run a command, return stdout
func runout(cmd *exec.Cmd) (string, error) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if err == nil {
		return strings.TrimSpace(stdout.String()), nil
	} else {
		return strings.TrimSpace(stderr.String()), fmt.Errorf("cmd: %v: %w", strings.Join(cmd.Args, " "), err)
	}
}
