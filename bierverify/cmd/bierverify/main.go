// Copyright 2026 The bierverify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// bierverify checks the traces of a BIER or BIER-TE emulation run against the
// forwarding behavior a bit-string authorizes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bierproto/bierverify/private/app"
	"github.com/bierproto/bierverify/private/app/command"
)

// CommandPather returns the path to a command.
type CommandPather interface {
	CommandPath() string
}

func main() {
	executable := filepath.Base(os.Args[0])
	cmd := newRoot(executable)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := app.ExitCode(err)
		if code == -1 {
			code = app.ExitFatal
		}
		os.Exit(code)
	}
}

func newRoot(executable string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           executable,
		Short:         "BIER trace verifier",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		Long: fmt.Sprintf(`%[1]s checks the per-interface packet captures and the per-receiver
application logs of a BIER or BIER-TE emulation run against a bit-string.

Every bit position of the bit-string denotes a node or a link of the topology,
as described by the bit position mapping file. Positions whose bit is set must
have seen the reference number of packets, all other positions none.

%[1]s exits with code 0 if every scenario passes, 1 if a scenario fails, and 2
on usage or fatal errors.`, executable),
	}
	cmd.AddCommand(
		newCheck(cmd),
		newRun(cmd),
		newResolve(cmd),
		command.NewSample(cmd, sampleConfig()),
		command.NewVersion(cmd),
		command.NewGendocs(cmd),
	)
	return cmd
}
