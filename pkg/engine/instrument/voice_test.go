package instrument

import "testing"

func TestTriggerNoteSetsTargetFrequency(t *testing.T) {
	v := NewSynthVoice(48000, 1)
	v.TriggerNote(69, 100) // A4 = 440Hz
	if v.targetFreq < 439 || v.targetFreq > 441 {
		t.Fatalf("expected ~440Hz for note 69, got %v", v.targetFreq)
	}
}

func TestGlideApproachesTargetGradually(t *testing.T) {
	v := NewSynthVoice(48000, 1)
	v.SetGlideTime(0.1)
	v.TriggerNote(60, 100)

	buf := make([]float32, 64)
	v.Process(buf) // first trigger: no prior note, jumps immediately
	firstFreq := v.currentFreq

	v.TriggerNote(72, 100) // octave up while still active: should glide
	v.Process(buf)
	afterOneBlock := v.currentFreq

	if afterOneBlock == v.targetFreq {
		t.Fatal("expected glide to still be in progress after one block")
	}
	if afterOneBlock <= firstFreq {
		t.Fatal("expected current frequency to move toward the new target")
	}
}

func TestReleaseThenSilenceDeactivatesVoice(t *testing.T) {
	v := NewSynthVoice(48000, 1)
	v.SetADSR(0.001, 0.001, 0.5, 0.01)
	v.TriggerNote(60, 100)
	v.ReleaseNote()

	buf := make([]float32, 256)
	for i := 0; i < 200; i++ {
		v.Process(buf)
	}
	if v.IsActive() {
		t.Fatal("expected voice to deactivate after release envelope completes")
	}
}

func TestStopIsImmediateAndSilent(t *testing.T) {
	v := NewSynthVoice(48000, 1)
	v.TriggerNote(60, 100)
	v.Stop()
	if v.IsActive() {
		t.Fatal("expected Stop to deactivate the voice immediately")
	}

	buf := make([]float32, 16)
	buf[0] = 1 // sentinel to ensure Process overwrites, not skips
	v.Process(buf)
	for _, s := range buf {
		if s != 0 {
			t.Fatal("expected silence from an inactive voice")
		}
	}
}

func TestUnisonDetuneSpreadsSymmetrically(t *testing.T) {
	v := NewSynthVoice(48000, 3)
	v.SetUnisonDetune(20)
	if v.oscs[0].detune >= 0 || v.oscs[2].detune <= 0 {
		t.Fatalf("expected symmetric spread, got %v, %v, %v", v.oscs[0].detune, v.oscs[1].detune, v.oscs[2].detune)
	}
	if v.oscs[1].detune != 0 {
		t.Fatalf("expected the center voice to carry no detune, got %v", v.oscs[1].detune)
	}
}
