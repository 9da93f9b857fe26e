package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/fabricmesh/fabrictl/pkg/fabric"
	"github.com/fabricmesh/fabrictl/pkg/reconcile"
	"github.com/fabricmesh/fabrictl/pkg/util"
)

// CLIExecutor applies change sets by pushing rendered statement text
// over an SSH session, one session per statement. Used for devices
// (external routers, non-SONiC switches) that only offer a command
// channel. Statements run in change-set order; the first failure stops
// the device's remaining statements.
type CLIExecutor struct{}

// Apply implements Executor.
func (e *CLIExecutor) Apply(ctx context.Context, dev *fabric.Device, cs *reconcile.ChangeSet) []StatementResult {
	results := make([]StatementResult, 0, len(cs.Changes))

	client, err := dialSSH(ctx, dev)
	if err != nil {
		// No transport at all: every statement fails as unattempted
		// except the first, which carries the reason.
		if len(cs.Changes) > 0 {
			results = append(results, StatementResult{
				Key:    cs.Changes[0].Statement.Key,
				Action: cs.Changes[0].Action,
				Reason: err.Error(),
			})
		}
		return results
	}
	defer client.Close()

	log := util.WithDevice(dev.Hostname)

	for _, c := range cs.Changes {
		if ctx.Err() != nil {
			results = append(results, StatementResult{
				Key:    c.Statement.Key,
				Action: c.Action,
				Reason: ctx.Err().Error(),
			})
			return results
		}

		if err := runStatement(client, c.Statement.Text); err != nil {
			log.Warnf("statement %s failed: %v", c.Statement.Key, err)
			results = append(results, StatementResult{
				Key:    c.Statement.Key,
				Action: c.Action,
				Reason: err.Error(),
			})
			return results
		}

		log.Debugf("applied %s", c.Statement.Key)
		results = append(results, StatementResult{
			Key:    c.Statement.Key,
			Action: c.Action,
			OK:     true,
		})
	}

	return results
}

func dialSSH(ctx context.Context, dev *fabric.Device) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: dev.SSHUser,
		Auth: []ssh.AuthMethod{
			ssh.Password(dev.SSHPass),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}
	if deadline, ok := ctx.Deadline(); ok {
		config.Timeout = time.Until(deadline)
	}

	client, err := ssh.Dial("tcp", dev.Mgmt+":22", config)
	if err != nil {
		return nil, &UnreachableError{Device: dev.Hostname, Err: err}
	}
	return client, nil
}

// runStatement executes one multi-line configuration statement in a
// fresh session, wrapping it in configuration mode.
func runStatement(client *ssh.Client, text string) error {
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("ssh session: %w", err)
	}
	defer session.Close()

	lines := append([]string{"configure terminal"}, strings.Split(text, "\n")...)
	cmd := strings.Join(lines, " ; ")

	out, err := session.CombinedOutput(cmd)
	if err != nil {
		return fmt.Errorf("%v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
