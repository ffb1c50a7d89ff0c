// Package cidr allocates VPC blocks and subnet masks and checks that two
// blocks can be peered.
package cidr

import (
	"errors"
	"fmt"
	"math/bits"
	"net"

	"github.com/c-robinson/iplib"
)

const (
	// VpcMask is the mask of blocks returned by Block.
	VpcMask = 16

	// MinSubnetMask is the smallest subnet AWS allows (/28).
	MinSubnetMask = 28

	maxSeed = 255
)

var (
	ErrSeedOutOfRange        = errors.New("seed out of range")
	ErrMaskTooSmall          = errors.New("subnet mask exceeds /28")
	ErrInvalidCount          = errors.New("count must be positive")
	ErrSameCidrBlock         = errors.New("cannot peer VPCs with the same CIDR block")
	ErrOverlappingCidrBlocks = errors.New("cannot peer VPCs with overlapping CIDR blocks")
)

// Allocation is a VPC block and the mask of each of its subnets.
type Allocation struct {
	Block      string
	SubnetMask int
}

// Block returns the VPC block for seed: 10.<seed>.0.0/16.
// Distinct seeds in 0..255 never overlap.
func Block(seed int) (string, error) {
	if seed < 0 || seed > maxSeed {
		return "", fmt.Errorf("%w: %d (want 0-%d)", ErrSeedOutOfRange, seed, maxSeed)
	}
	return fmt.Sprintf("10.%d.0.0/%d", seed, VpcMask), nil
}

// SubnetMask returns the smallest mask that fits azCount*subnetGroups equal
// subnets into a block with vpcMask.
func SubnetMask(vpcMask, azCount, subnetGroups int) (int, error) {
	if azCount <= 0 || subnetGroups <= 0 {
		return 0, fmt.Errorf("%w: azCount=%d subnetGroups=%d", ErrInvalidCount, azCount, subnetGroups)
	}
	n := azCount * subnetGroups
	mask := vpcMask + bits.Len(uint(n-1))
	if mask > MinSubnetMask {
		return 0, fmt.Errorf("%w: %d subnets in a /%d need /%d", ErrMaskTooSmall, n, vpcMask, mask)
	}
	return mask, nil
}

// Allocate combines Block and SubnetMask.
func Allocate(seed, azCount, subnetGroups int) (Allocation, error) {
	block, err := Block(seed)
	if err != nil {
		return Allocation{}, err
	}
	mask, err := SubnetMask(VpcMask, azCount, subnetGroups)
	if err != nil {
		return Allocation{}, err
	}
	return Allocation{Block: block, SubnetMask: mask}, nil
}

// Subnets returns the first count subnets of size mask inside block.
func Subnets(block string, mask, count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count=%d", ErrInvalidCount, count)
	}
	n, err := parse(block)
	if err != nil {
		return nil, err
	}
	ones, _ := n.Mask().Size()
	if mask < ones || mask > MinSubnetMask {
		return nil, fmt.Errorf("%w: /%d does not fit in %s", ErrMaskTooSmall, mask, block)
	}

	subnets, err := n.Subnet(mask)
	if err != nil {
		return nil, fmt.Errorf("splitting %s into /%d: %w", block, mask, err)
	}
	if len(subnets) < count {
		return nil, fmt.Errorf("%s holds %d /%d subnets, %d requested", block, len(subnets), mask, count)
	}

	result := make([]string, count)
	for i := range result {
		result[i] = subnets[i].String()
	}
	return result, nil
}

// Carve allocates one subnet per mask from the start of block, in order.
// Each subnet is aligned to its own size, so mixed masks may leave gaps.
func Carve(block string, masks []int) ([]string, error) {
	n, err := parse(block)
	if err != nil {
		return nil, err
	}
	ones, _ := n.Mask().Size()
	start := uint64(iplib.IP4ToUint32(n.IP()))
	end := start + uint64(1)<<(32-ones)

	result := make([]string, len(masks))
	cursor := start
	for i, mask := range masks {
		if mask < ones || mask > MinSubnetMask {
			return nil, fmt.Errorf("%w: /%d does not fit in %s", ErrMaskTooSmall, mask, block)
		}
		size := uint64(1) << (32 - mask)
		if rem := (cursor - start) % size; rem != 0 {
			cursor += size - rem
		}
		if cursor+size > end {
			return nil, fmt.Errorf("%s has no room left for subnet %d (/%d)", block, i, mask)
		}
		result[i] = iplib.NewNet4(iplib.Uint32ToIP4(uint32(cursor)), mask).String()
		cursor += size
	}
	return result, nil
}

// Overlaps reports whether two blocks share any address.
func Overlaps(a, b string) (bool, error) {
	na, err := parse(a)
	if err != nil {
		return false, err
	}
	nb, err := parse(b)
	if err != nil {
		return false, err
	}
	return na.Contains(nb.IP()) || nb.Contains(na.IP()), nil
}

// CheckPeerable fails when local and peer cannot be routed to each other.
func CheckPeerable(local, peer string) error {
	nl, err := parse(local)
	if err != nil {
		return err
	}
	np, err := parse(peer)
	if err != nil {
		return err
	}
	if nl.String() == np.String() {
		return fmt.Errorf("%w %s", ErrSameCidrBlock, local)
	}
	if nl.Contains(np.IP()) || np.Contains(nl.IP()) {
		return fmt.Errorf("%w: %s and %s", ErrOverlappingCidrBlocks, local, peer)
	}
	return nil
}

func parse(block string) (iplib.Net4, error) {
	ip, ipnet, err := net.ParseCIDR(block)
	if err != nil {
		return iplib.Net4{}, fmt.Errorf("parsing CIDR block %q: %w", block, err)
	}
	if ip.To4() == nil {
		return iplib.Net4{}, fmt.Errorf("parsing CIDR block %q: not an IPv4 block", block)
	}
	ones, _ := ipnet.Mask.Size()
	return iplib.NewNet4(ipnet.IP, ones), nil
}
