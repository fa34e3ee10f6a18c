package drift

import (
	"reflect"
	"testing"
)

func TestReturnRangeInt32(t *testing.T) {
	rangeString := "0-4,6-7"
	max := int32(8)
	expected := []int32{0, 1, 2, 3, 4, 6, 7}

	result := returnRangeInt32(rangeString, max)

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, but got %v", expected, result)
	}
}

func TestReturnRangeInt32Single(t *testing.T) {
	rangeString := "2"
	max := int32(8)
	expected := []int32{2}

	result := returnRangeInt32(rangeString, max)

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, but got %v", expected, result)
	}
}

func TestReturnRangeInt32ClampsToMax(t *testing.T) {
	rangeString := "0-4,6-9"
	max := int32(8)
	expected := []int32{0, 1, 2, 3, 4, 6, 7}

	result := returnRangeInt32(rangeString, max)

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, but got %v", expected, result)
	}
}

func TestRandomHex(t *testing.T) {
	length := 16
	result := randomHex(length)

	if len(result) != length*2 {
		t.Errorf("Expected length %d, but got %d", length*2, len(result))
	}
}
