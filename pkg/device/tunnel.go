package device

import (
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/fabricmesh/fabrictl/pkg/util"
)

// SSHTunnel forwards a local TCP port to an address inside a device
// through an SSH connection. Used to reach SONiC's Redis (CONFIG_DB on
// 127.0.0.1:6379), which has no authentication and is not exposed on
// the management network.
type SSHTunnel struct {
	localAddr  string // "127.0.0.1:<port>"
	remoteAddr string
	sshClient  *ssh.Client
	listener   net.Listener
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewSSHTunnel dials SSH on host:22 and opens a local listener on a
// random port. Connections to the local port are forwarded to
// remoteAddr inside the SSH host.
func NewSSHTunnel(host, user, pass, remoteAddr string) (*SSHTunnel, error) {
	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(pass),
		},
		// Switch management networks rotate host keys on reimage;
		// verification is the operator's call, not enforced here.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	sshClient, err := ssh.Dial("tcp", host+":22", config)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", host, err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("local listen: %w", err)
	}

	t := &SSHTunnel{
		localAddr:  listener.Addr().String(),
		remoteAddr: remoteAddr,
		sshClient:  sshClient,
		listener:   listener,
		done:       make(chan struct{}),
	}

	t.wg.Add(1)
	go t.acceptLoop()

	return t, nil
}

// LocalAddr returns the local address (e.g. "127.0.0.1:54321") that
// forwards to remoteAddr inside the SSH host.
func (t *SSHTunnel) LocalAddr() string {
	return t.localAddr
}

// Close stops the listener, closes the SSH connection, and waits for
// all forwarding goroutines to finish.
func (t *SSHTunnel) Close() error {
	close(t.done)
	t.listener.Close()
	t.wg.Wait()
	return t.sshClient.Close()
}

func (t *SSHTunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				util.Debugf("tunnel accept: %v", err)
				return
			}
		}

		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *SSHTunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.sshClient.Dial("tcp", t.remoteAddr)
	if err != nil {
		util.Debugf("tunnel dial %s: %v", t.remoteAddr, err)
		return
	}
	defer remote.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		io.Copy(remote, local)
	}()
	go func() {
		defer wg.Done()
		io.Copy(local, remote)
	}()
	wg.Wait()
}
