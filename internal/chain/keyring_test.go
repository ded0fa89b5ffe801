package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

const (
	devKey0 = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devKey1 = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

func TestKeyringOrderAndAddresses(t *testing.T) {
	k, err := NewKeyring([]string{devKey0, "", devKey1, devKey0})
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}

	got := k.Addresses()
	want := []common.Address{
		common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
	}
	if len(got) != len(want) {
		t.Fatalf("addresses: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("address %d: %s != %s", i, got[i].Hex(), want[i].Hex())
		}
	}
	if _, ok := k.Key(want[1]); !ok {
		t.Fatalf("missing key for %s", want[1].Hex())
	}
}

func TestKeyringInvalidKey(t *testing.T) {
	if _, err := NewKeyring([]string{"zz"}); err == nil {
		t.Fatalf("expected error for invalid key")
	}
}

func TestEmptyKeyring(t *testing.T) {
	var k Keyring
	if len(k.Addresses()) != 0 {
		t.Fatalf("expected no addresses")
	}
	if _, ok := k.Key(common.Address{}); ok {
		t.Fatalf("expected no key")
	}
}
