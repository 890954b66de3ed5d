package cpu

import "testing"

func TestShiftImmediateLSR0MeansLSR32(t *testing.T) {
	got, carry := ShiftImmediate(ShiftLSR, 0x8000_0000, 0, false)
	if got != 0 || !carry {
		t.Errorf("LSR#0 = (%08X,%v), want (0,true)", got, carry)
	}
}

func TestShiftImmediateASR0MeansASR32(t *testing.T) {
	got, carry := ShiftImmediate(ShiftASR, 0x8000_0000, 0, false)
	if got != 0xFFFF_FFFF || !carry {
		t.Errorf("ASR#0 on a negative value = (%08X,%v), want (FFFFFFFF,true)", got, carry)
	}
}

func TestShiftImmediateROR0MeansRRX(t *testing.T) {
	got, carry := ShiftImmediate(ShiftROR, 0x0000_0002, 0, true)
	if got != 0x8000_0001 || carry {
		t.Errorf("RRX with carry-in = (%08X,%v), want (80000001,false)", got, carry)
	}
}

func TestShiftImmediateLSL0IsNoOp(t *testing.T) {
	got, carry := ShiftImmediate(ShiftLSL, 0x1234, 0, true)
	if got != 0x1234 || !carry {
		t.Errorf("LSL#0 = (%08X,%v), want (1234,true) (carry unchanged)", got, carry)
	}
}

func TestShiftRegisterZeroAmountIsTrueNoOp(t *testing.T) {
	got, carry := ShiftRegister(ShiftROR, 0xFFFF_FFFF, 0, false)
	if got != 0xFFFF_FFFF || carry {
		t.Errorf("register-shift by 0 must be a true no-op, got (%08X,%v)", got, carry)
	}
}

func TestShiftRegisterLSLBy32ClearsAndCarriesBit0(t *testing.T) {
	got, carry := ShiftRegister(ShiftLSL, 0x0000_0001, 32, false)
	if got != 0 || !carry {
		t.Errorf("LSL by 32 = (%08X,%v), want (0,true)", got, carry)
	}
}

func TestConditionCodesGEandLT(t *testing.T) {
	c := New()
	c.regs.SetFlagN(true)
	c.regs.SetFlagV(true)
	if !c.conditionPasses(0xA) { // GE: N==V
		t.Errorf("GE should pass when N==V")
	}
	c.regs.SetFlagV(false)
	if !c.conditionPasses(0xB) { // LT: N!=V
		t.Errorf("LT should pass when N!=V")
	}
}

func TestConditionAlwaysAndNever(t *testing.T) {
	c := New()
	if !c.conditionPasses(0xE) {
		t.Errorf("AL should always pass")
	}
	if c.conditionPasses(0xF) {
		t.Errorf("NV should never pass")
	}
}
