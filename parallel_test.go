package cakes

import (
	"errors"
	"testing"
)

func TestNewRuntimeDefaultsWorkerCount(t *testing.T) {
	rt := NewRuntime(0)
	if rt == nil || rt.sem == nil {
		t.Fatalf("NewRuntime(0) should still build a usable runtime")
	}
}

func TestForEachVisitsEveryIndex(t *testing.T) {
	rt := NewRuntime(4)
	seen := make([]int32, 10)
	err := rt.forEach(10, func(i int) error {
		seen[i] = 1
		return nil
	})
	if err != nil {
		t.Fatalf("forEach returned error: %v", err)
	}
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d not visited", i)
		}
	}
}

func TestForEachPropagatesFirstError(t *testing.T) {
	rt := NewRuntime(2)
	boom := errors.New("boom")
	err := rt.forEach(5, func(i int) error {
		if i == 3 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("forEach error = %v, want %v", err, boom)
	}
}

func TestForEachNestedDoesNotDeadlock(t *testing.T) {
	rt := NewRuntime(1)
	seen := make([][]int32, 4)
	err := rt.forEach(4, func(i int) error {
		inner := make([]int32, 4)
		err := rt.forEach(4, func(j int) error {
			inner[j] = 1
			return nil
		})
		seen[i] = inner
		return err
	})
	if err != nil {
		t.Fatalf("nested forEach returned error: %v", err)
	}
	for i, row := range seen {
		for j, v := range row {
			if v != 1 {
				t.Fatalf("outer %d inner %d not visited", i, j)
			}
		}
	}
}
