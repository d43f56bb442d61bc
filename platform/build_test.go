package platform

import "testing"

func TestNetworkBuilderWiresPrivilegeLevels(t *testing.T) {
	b, err := NetworkBuilder("switch1", "cisco_iosxe", "")
	if err != nil {
		t.Fatalf("NetworkBuilder: %v", err)
	}

	d := b.Build()
	if len(d.Args.PrivilegeLevels) == 0 {
		t.Fatal("expected privilege levels to be wired onto the driver")
	}
	if d.Args.DefaultDesiredPrivilegeLevel != "privilege-exec" {
		t.Fatalf("got %q, want privilege-exec", d.Args.DefaultDesiredPrivilegeLevel)
	}
}

func TestNetworkBuilderRejectsNonNetworkPlatform(t *testing.T) {
	custom := []byte(`
platform-type: generic_only_os
default:
  driver-type: generic
`)
	if err := Register(custom); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := NetworkBuilder("switch1", "generic_only_os", ""); err == nil {
		t.Fatal("expected error building a network driver from a generic-only platform")
	}
}

func TestGenericBuilderAppliesFailedWhenContains(t *testing.T) {
	b, err := GenericBuilder("switch1", "cisco_iosxe", "")
	if err != nil {
		t.Fatalf("GenericBuilder: %v", err)
	}

	d := b.Build()
	if len(d.Args.FailedWhenContains) == 0 {
		t.Fatal("expected failed-when-contains substrings to be wired onto the driver")
	}
}
