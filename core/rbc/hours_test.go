package rbc

import (
	"reflect"
	"testing"
)

func TestHourCandidates(t *testing.T) {
	cases := []struct {
		raw  float64
		want []int
	}{
		{15, []int{15}},
		{0, []int{0, 24}},
		{24, []int{24, 0}},
		{25, []int{25, 1}},
		{-1, []int{-1, 23}},
		{12.4, []int{12}},
		{23.6, []int{24, 0}},
	}
	for _, c := range cases {
		got := hourCandidates(c.raw)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("candidates(%v) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestMod24Negative(t *testing.T) {
	if mod24(-1) != 23 {
		t.Fatalf("mod24(-1) = %d", mod24(-1))
	}
	if mod24(-24) != 0 {
		t.Fatalf("mod24(-24) = %d", mod24(-24))
	}
}
