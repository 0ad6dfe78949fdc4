package storage

import "testing"

func TestResolveObjectStorageConfigFromEnvDefaultsToGCS(t *testing.T) {
	got, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if got.Mode != ObjectStorageModeGCS {
		t.Fatalf("expected default mode gcs, got %q", got.Mode)
	}
	if got.CompatibilityFallback {
		t.Fatal("expected no compatibility fallback when no emulator host is set")
	}
}

func TestResolveObjectStorageConfigFromEnvFallsBackToEmulatorWhenHostSetWithoutMode(t *testing.T) {
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")

	got, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if got.Mode != ObjectStorageModeGCSEmulator {
		t.Fatalf("expected emulator mode, got %q", got.Mode)
	}
	if !got.CompatibilityFallback {
		t.Fatal("expected the compatibility fallback flag to be set")
	}
}

func TestResolveObjectStorageConfigFromEnvRejectsUnknownMode(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "s3")

	_, err := ResolveObjectStorageConfigFromEnv()
	if err == nil {
		t.Fatal("expected an error for an unsupported mode")
	}
	cfgErr, ok := err.(*ObjectStorageConfigError)
	if !ok {
		t.Fatalf("expected *ObjectStorageConfigError, got %T", err)
	}
	if cfgErr.Code != ObjectStorageConfigErrorInvalidMode {
		t.Fatalf("expected invalid_mode, got %s", cfgErr.Code)
	}
}

func TestResolveObjectStorageConfigFromEnvRequiresEmulatorHostWhenModeIsEmulator(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "gcs_emulator")

	_, err := ResolveObjectStorageConfigFromEnv()
	if err == nil {
		t.Fatal("expected an error when the emulator host is missing")
	}
	cfgErr, ok := err.(*ObjectStorageConfigError)
	if !ok {
		t.Fatalf("expected *ObjectStorageConfigError, got %T", err)
	}
	if cfgErr.Code != ObjectStorageConfigErrorMissingEmulatorHost {
		t.Fatalf("expected missing_emulator_host, got %s", cfgErr.Code)
	}
}

func TestResolveObjectStorageConfigFromEnvRejectsInvalidEmulatorHostURL(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "gcs_emulator")
	t.Setenv("STORAGE_EMULATOR_HOST", "not-a-url")

	_, err := ResolveObjectStorageConfigFromEnv()
	if err == nil {
		t.Fatal("expected an error for a malformed emulator host")
	}
	cfgErr, ok := err.(*ObjectStorageConfigError)
	if !ok {
		t.Fatalf("expected *ObjectStorageConfigError, got %T", err)
	}
	if cfgErr.Code != ObjectStorageConfigErrorInvalidEmulatorHost {
		t.Fatalf("expected invalid_emulator_host, got %s", cfgErr.Code)
	}
}

func TestIsSupportedObjectStorageMode(t *testing.T) {
	if !IsSupportedObjectStorageMode(ObjectStorageModeGCS) {
		t.Fatal("expected gcs to be supported")
	}
	if !IsSupportedObjectStorageMode(ObjectStorageModeGCSEmulator) {
		t.Fatal("expected gcs_emulator to be supported")
	}
	if IsSupportedObjectStorageMode("s3") {
		t.Fatal("expected s3 to be unsupported")
	}
}

func TestObjectStorageConfigIsEmulatorMode(t *testing.T) {
	if (ObjectStorageConfig{Mode: ObjectStorageModeGCS}).IsEmulatorMode() {
		t.Fatal("expected gcs mode to not be emulator mode")
	}
	if !(ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator}).IsEmulatorMode() {
		t.Fatal("expected gcs_emulator mode to be emulator mode")
	}
}
