package cidr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock(t *testing.T) {
	tests := []struct {
		seed     int
		expected string
		err      error
	}{
		{seed: 0, expected: "10.0.0.0/16"},
		{seed: 1, expected: "10.1.0.0/16"},
		{seed: 42, expected: "10.42.0.0/16"},
		{seed: 255, expected: "10.255.0.0/16"},
		{seed: 256, err: ErrSeedOutOfRange},
		{seed: -1, err: ErrSeedOutOfRange},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.seed), func(t *testing.T) {
			block, err := Block(tt.seed)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, block)
		})
	}
}

func TestBlock_DistinctSeedsDoNotOverlap(t *testing.T) {
	seeds := []int{0, 1, 2, 17, 128, 255}
	for i, a := range seeds {
		for _, b := range seeds[i+1:] {
			ba, err := Block(a)
			require.NoError(t, err)
			bb, err := Block(b)
			require.NoError(t, err)

			overlap, err := Overlaps(ba, bb)
			require.NoError(t, err)
			assert.False(t, overlap, "%s overlaps %s", ba, bb)
		}
	}
}

func TestSubnetMask(t *testing.T) {
	tests := []struct {
		name     string
		vpcMask  int
		azCount  int
		groups   int
		expected int
		err      error
	}{
		{"one subnet", 16, 1, 1, 16, nil},
		{"two azs two groups", 16, 2, 2, 18, nil},
		{"three azs two groups", 16, 3, 2, 19, nil},
		{"six azs three groups", 16, 6, 3, 21, nil},
		{"small vpc", 24, 2, 2, 26, nil},
		{"too small", 26, 3, 2, 0, ErrMaskTooSmall},
		{"zero azs", 16, 0, 2, 0, ErrInvalidCount},
		{"negative groups", 16, 2, -1, 0, ErrInvalidCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask, err := SubnetMask(tt.vpcMask, tt.azCount, tt.groups)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mask)
		})
	}
}

func TestAllocate(t *testing.T) {
	alloc, err := Allocate(3, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, Allocation{Block: "10.3.0.0/16", SubnetMask: 18}, alloc)

	_, err = Allocate(300, 2, 2)
	assert.True(t, errors.Is(err, ErrSeedOutOfRange))

	_, err = Allocate(1, 0, 2)
	assert.True(t, errors.Is(err, ErrInvalidCount))
}

func TestSubnets(t *testing.T) {
	subnets, err := Subnets("10.1.0.0/16", 18, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"10.1.0.0/18",
		"10.1.64.0/18",
		"10.1.128.0/18",
		"10.1.192.0/18",
	}, subnets)

	subnets, err = Subnets("10.1.0.0/24", 26, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.1.0.0/26", "10.1.0.64/26"}, subnets)
}

func TestSubnets_Errors(t *testing.T) {
	_, err := Subnets("10.1.0.0/16", 17, 3)
	assert.Error(t, err)

	_, err = Subnets("10.1.0.0/16", 15, 1)
	assert.True(t, errors.Is(err, ErrMaskTooSmall))

	_, err = Subnets("10.1.0.0/16", 18, 0)
	assert.True(t, errors.Is(err, ErrInvalidCount))

	_, err = Subnets("not-a-cidr", 18, 1)
	assert.Error(t, err)
}

func TestCarve(t *testing.T) {
	subnets, err := Carve("10.1.0.0/16", []int{24, 26, 24})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.1.0.0/24", "10.1.1.0/26", "10.1.2.0/24"}, subnets)

	subnets, err = Carve("10.2.0.0/16", []int{18, 18, 18, 18})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.2.0.0/18", "10.2.64.0/18", "10.2.128.0/18", "10.2.192.0/18"}, subnets)

	_, err = Carve("10.2.0.0/16", []int{17, 17, 17})
	assert.Error(t, err)

	_, err = Carve("10.2.0.0/16", []int{30})
	assert.True(t, errors.Is(err, ErrMaskTooSmall))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"10.1.0.0/16", "10.1.0.0/16", true},
		{"10.1.0.0/16", "10.1.4.0/24", true},
		{"10.1.4.0/24", "10.1.0.0/16", true},
		{"10.1.0.0/16", "10.2.0.0/16", false},
		{"172.31.0.0/16", "10.0.0.0/8", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			overlap, err := Overlaps(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, overlap)
		})
	}
}

func TestCheckPeerable(t *testing.T) {
	err := CheckPeerable("10.1.0.0/16", "10.1.0.0/16")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSameCidrBlock))
	assert.Equal(t, "cannot peer VPCs with the same CIDR block 10.1.0.0/16", err.Error())

	err = CheckPeerable("10.1.0.0/16", "10.1.128.0/17")
	assert.True(t, errors.Is(err, ErrOverlappingCidrBlocks))

	assert.NoError(t, CheckPeerable("10.1.0.0/16", "10.2.0.0/16"))

	err = CheckPeerable("10.1.0.0/16", "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "garbage")
}
