package transport

import (
	"reflect"
	"testing"
)

func TestBuildArgsTelnet(t *testing.T) {
	s := NewSystemTelnet(Args{Host: "switch1", Port: 23})

	binary, argv := s.buildArgs()

	if binary != "telnet" {
		t.Fatalf("got binary %q, want telnet", binary)
	}
	want := []string{"switch1", "23"}
	if !reflect.DeepEqual(argv, want) {
		t.Fatalf("got argv %v, want %v", argv, want)
	}
}

func TestBuildArgsSSHDefaultInsecure(t *testing.T) {
	s := NewSystemSSH(Args{Host: "switch1", Port: 22, User: "admin"}, SSHArgs{StrictKey: false})

	binary, argv := s.buildArgs()

	if binary != "ssh" {
		t.Fatalf("got binary %q, want ssh", binary)
	}

	want := []string{
		"-o", "ServerAliveInterval=10",
		"-p", "22",
		"-o", "StrictHostKeyChecking=no", "-o", "UserKnownHostsFile=/dev/null",
		"admin@switch1",
	}
	if !reflect.DeepEqual(argv, want) {
		t.Fatalf("got argv %v, want %v", argv, want)
	}
}

func TestBuildArgsSSHStrictKeyWithKnownHosts(t *testing.T) {
	s := NewSystemSSH(Args{Host: "switch1", Port: 22}, SSHArgs{
		StrictKey:          true,
		KnownHostsFilePath: "/home/user/.ssh/known_hosts",
	})

	_, argv := s.buildArgs()

	want := []string{
		"-o", "ServerAliveInterval=10",
		"-p", "22",
		"-o", "UserKnownHostsFile=/home/user/.ssh/known_hosts",
		"switch1",
	}
	if !reflect.DeepEqual(argv, want) {
		t.Fatalf("got argv %v, want %v", argv, want)
	}
}

func TestBuildArgsSSHWithPrivateKeyAndConfig(t *testing.T) {
	s := NewSystemSSH(Args{Host: "switch1", Port: 22, User: "admin"}, SSHArgs{
		StrictKey:      true,
		ConfigFilePath: "/home/user/.ssh/config",
		PrivateKeyPath: "/home/user/.ssh/id_ed25519",
	})

	_, argv := s.buildArgs()

	want := []string{
		"-o", "ServerAliveInterval=10",
		"-p", "22",
		"-F", "/home/user/.ssh/config",
		"-i", "/home/user/.ssh/id_ed25519",
		"admin@switch1",
	}
	if !reflect.DeepEqual(argv, want) {
		t.Fatalf("got argv %v, want %v", argv, want)
	}
}

func TestInChannelAuthDataReflectsTransportKind(t *testing.T) {
	telnet := NewSystemTelnet(Args{Host: "switch1", User: "admin", Password: "hunter2"})
	if got := telnet.InChannelAuthData().AuthType; got != AuthTypeTelnet {
		t.Fatalf("got %v, want AuthTypeTelnet", got)
	}

	ssh := NewSystemSSH(Args{Host: "switch1", User: "admin", Password: "hunter2"}, SSHArgs{})
	if got := ssh.InChannelAuthData().AuthType; got != AuthTypeSSH {
		t.Fatalf("got %v, want AuthTypeSSH", got)
	}
}
