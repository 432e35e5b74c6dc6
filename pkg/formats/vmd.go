package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-motion/pkg/encoding"
)

// VMD format errors.
var (
	ErrInvalidVMDHeader  = errors.New("invalid VMD header")
	ErrTruncatedVMDData  = errors.New("truncated VMD data")
	ErrTooManyVMDRecords = errors.New("VMD record count exceeds data size")
)

// Record layout sizes in bytes.
const (
	VMDHeaderSize         = 30
	BoneRecordSize        = 111
	MorphRecordSize       = 23
	CameraRecordSize      = 61
	LightRecordSize       = 28
	SelfShadowRecordSize  = 9
	ShowIKHeaderSize      = 9
	IKStateRecordSize     = 21
	BoneNameSize          = 15
	IKNameSize            = 20
	BoneInterpolationSize = 64
	CameraInterpSize      = 24
)

const (
	vmdSignatureV1 = "Vocaloid Motion Data file"
	vmdSignatureV2 = "Vocaloid Motion Data 0002"
)

// VMDVersion identifies the header variant, which only changes the width
// of the model name field.
type VMDVersion int

const (
	VMDVersion1 VMDVersion = 1 // 10-byte model name
	VMDVersion2 VMDVersion = 2 // 20-byte model name
)

// ModelNameSize returns the width of the model name field.
func (v VMDVersion) ModelNameSize() int {
	if v == VMDVersion1 {
		return 10
	}
	return 20
}

func (v VMDVersion) signature() string {
	if v == VMDVersion1 {
		return vmdSignatureV1
	}
	return vmdSignatureV2
}

// Bone interpolation channels.
const (
	BoneInterpX = iota
	BoneInterpY
	BoneInterpZ
	BoneInterpRotation
	BoneInterpChannels
)

// Camera interpolation channels.
const (
	CameraInterpX = iota
	CameraInterpY
	CameraInterpZ
	CameraInterpRotation
	CameraInterpDistance
	CameraInterpFOV
	CameraInterpChannels
)

// VMD is a parsed motion file.
type VMD struct {
	Version     VMDVersion
	ModelName   string
	Bones       []VMDBoneKeyframe
	Morphs      []VMDMorphKeyframe
	Cameras     []VMDCameraKeyframe
	Lights      []VMDLightKeyframe
	SelfShadows []VMDSelfShadowKeyframe
	ShowIK      []VMDShowIKKeyframe
}

// VMDBoneKeyframe is one bone record.
type VMDBoneKeyframe struct {
	Name          string
	Frame         uint32
	Position      [3]float32
	Rotation      [4]float32 // X, Y, Z, W
	Interpolation [BoneInterpolationSize]byte
}

// InterpolationQuad returns the control values of one channel as
// (x1, x2, y1, y2). Only the first row of the table is authoritative; the
// remaining rows are shifted copies.
func (k *VMDBoneKeyframe) InterpolationQuad(channel int) [4]uint8 {
	t := &k.Interpolation
	return [4]uint8{t[channel], t[8+channel], t[4+channel], t[12+channel]}
}

// SetInterpolationQuad stores (x1, x2, y1, y2) for one channel and refreshes
// the shifted copy rows.
func (k *VMDBoneKeyframe) SetInterpolationQuad(channel int, q [4]uint8) {
	t := &k.Interpolation
	t[channel] = q[0]
	t[8+channel] = q[1]
	t[4+channel] = q[2]
	t[12+channel] = q[3]
	for row := 1; row < 4; row++ {
		for i := 0; i < 16; i++ {
			var b byte
			if i+row < 16 {
				b = t[i+row]
			}
			t[row*16+i] = b
		}
	}
}

// VMDMorphKeyframe is one morph (face) record.
type VMDMorphKeyframe struct {
	Name   string
	Frame  uint32
	Weight float32
}

// VMDCameraKeyframe is one camera record.
type VMDCameraKeyframe struct {
	Frame         uint32
	Distance      float32
	Position      [3]float32 // look-at point
	Angle         [3]float32 // radians
	Interpolation [CameraInterpSize]byte
	FOV           uint32 // degrees
	Perspective   bool
}

// InterpolationQuad returns one channel as (x1, x2, y1, y2).
func (k *VMDCameraKeyframe) InterpolationQuad(channel int) [4]uint8 {
	o := channel * 4
	return [4]uint8{k.Interpolation[o], k.Interpolation[o+1], k.Interpolation[o+2], k.Interpolation[o+3]}
}

// SetInterpolationQuad stores (x1, x2, y1, y2) for one channel.
func (k *VMDCameraKeyframe) SetInterpolationQuad(channel int, q [4]uint8) {
	copy(k.Interpolation[channel*4:], q[:])
}

// VMDLightKeyframe is one light record.
type VMDLightKeyframe struct {
	Frame     uint32
	Color     [3]float32 // linear RGB, 0..1
	Direction [3]float32
}

// VMDSelfShadowKeyframe is one self-shadow record.
type VMDSelfShadowKeyframe struct {
	Frame    uint32
	Mode     uint8 // 0 = off, 1 = mode1, 2 = mode2
	Distance float32
}

// VMDIKState is the enable state of one IK chain.
type VMDIKState struct {
	Name    string
	Enabled bool
}

// VMDShowIKKeyframe is one model visibility / IK record.
type VMDShowIKKeyframe struct {
	Frame   uint32
	Visible bool
	IK      []VMDIKState
}

// VMDInfo is the result of a preparse pass.
type VMDInfo struct {
	Version         VMDVersion
	ModelName       string
	BoneCount       int
	MorphCount      int
	CameraCount     int
	LightCount      int
	SelfShadowCount int
	ShowIKCount     int
	Size            int // bytes consumed
}

// IsCameraMotion reports whether the file drives the scene camera/light
// rather than a model.
func (i *VMDInfo) IsCameraMotion() bool {
	return i.BoneCount == 0 && i.MorphCount == 0 && (i.CameraCount > 0 || i.LightCount > 0)
}

// Preparse validates header and record counts against the buffer size
// without decoding any keyframe. It is the only validation ParseVMD needs:
// once Preparse succeeds, decoding cannot run out of data.
func Preparse(data []byte) (*VMDInfo, error) {
	version, err := parseVMDSignature(data)
	if err != nil {
		return nil, err
	}

	nameSize := version.ModelNameSize()
	offset := VMDHeaderSize + nameSize
	if len(data) < offset {
		return nil, fmt.Errorf("%w: reading model name", ErrTruncatedVMDData)
	}

	info := &VMDInfo{
		Version:   version,
		ModelName: encoding.FixedStringToUTF8(data[VMDHeaderSize:offset]),
	}

	// Bone section is mandatory; the rest may be cut off at a section boundary.
	fixed := []struct {
		name  string
		count *int
		size  int
	}{
		{"bone", &info.BoneCount, BoneRecordSize},
		{"morph", &info.MorphCount, MorphRecordSize},
		{"camera", &info.CameraCount, CameraRecordSize},
		{"light", &info.LightCount, LightRecordSize},
		{"self shadow", &info.SelfShadowCount, SelfShadowRecordSize},
	}
	for i, section := range fixed {
		if i > 0 && offset == len(data) {
			info.Size = offset
			return info, nil
		}
		n, err := readCount(data, offset, section.name)
		if err != nil {
			return nil, err
		}
		offset += 4
		if n > uint32((len(data)-offset)/section.size) {
			return nil, fmt.Errorf("%w: %d %s records", ErrTooManyVMDRecords, n, section.name)
		}
		*section.count = int(n)
		offset += int(n) * section.size
	}

	if offset == len(data) {
		info.Size = offset
		return info, nil
	}
	n, err := readCount(data, offset, "show/IK")
	if err != nil {
		return nil, err
	}
	offset += 4
	for i := uint32(0); i < n; i++ {
		if len(data)-offset < ShowIKHeaderSize {
			return nil, fmt.Errorf("%w: show/IK record %d", ErrTruncatedVMDData, i)
		}
		states := binary.LittleEndian.Uint32(data[offset+5:])
		offset += ShowIKHeaderSize
		if states > uint32((len(data)-offset)/IKStateRecordSize) {
			return nil, fmt.Errorf("%w: %d IK states in record %d", ErrTooManyVMDRecords, states, i)
		}
		offset += int(states) * IKStateRecordSize
	}
	info.ShowIKCount = int(n)
	info.Size = offset
	return info, nil
}

// ParseVMD parses a VMD file from raw bytes.
func ParseVMD(data []byte) (*VMD, error) {
	info, err := Preparse(data)
	if err != nil {
		return nil, err
	}

	vmd := &VMD{
		Version:     info.Version,
		ModelName:   info.ModelName,
		Bones:       make([]VMDBoneKeyframe, info.BoneCount),
		Morphs:      make([]VMDMorphKeyframe, info.MorphCount),
		Cameras:     make([]VMDCameraKeyframe, info.CameraCount),
		Lights:      make([]VMDLightKeyframe, info.LightCount),
		SelfShadows: make([]VMDSelfShadowKeyframe, info.SelfShadowCount),
		ShowIK:      make([]VMDShowIKKeyframe, info.ShowIKCount),
	}

	r := bytes.NewReader(data[VMDHeaderSize+info.Version.ModelNameSize() : info.Size])

	if err := readSection(r, len(vmd.Bones), func(i int) error { return parseBone(r, &vmd.Bones[i]) }); err != nil {
		return nil, fmt.Errorf("parsing bone keyframes: %w", err)
	}
	if err := readSection(r, len(vmd.Morphs), func(i int) error { return parseMorph(r, &vmd.Morphs[i]) }); err != nil {
		return nil, fmt.Errorf("parsing morph keyframes: %w", err)
	}
	if err := readSection(r, len(vmd.Cameras), func(i int) error { return parseCamera(r, &vmd.Cameras[i]) }); err != nil {
		return nil, fmt.Errorf("parsing camera keyframes: %w", err)
	}
	if err := readSection(r, len(vmd.Lights), func(i int) error { return parseLight(r, &vmd.Lights[i]) }); err != nil {
		return nil, fmt.Errorf("parsing light keyframes: %w", err)
	}
	if err := readSection(r, len(vmd.SelfShadows), func(i int) error { return parseSelfShadow(r, &vmd.SelfShadows[i]) }); err != nil {
		return nil, fmt.Errorf("parsing self shadow keyframes: %w", err)
	}
	if err := readSection(r, len(vmd.ShowIK), func(i int) error { return parseShowIK(r, &vmd.ShowIK[i]) }); err != nil {
		return nil, fmt.Errorf("parsing show/IK keyframes: %w", err)
	}

	return vmd, nil
}

// ParseVMDFile parses a VMD file from disk.
func ParseVMDFile(path string) (*VMD, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading VMD file: %w", err)
	}
	return ParseVMD(data)
}

// Encode serializes the motion. All six sections are always written.
func (v *VMD) Encode() []byte {
	var buf bytes.Buffer
	version := v.Version
	if version != VMDVersion1 {
		version = VMDVersion2
	}

	header := make([]byte, VMDHeaderSize)
	copy(header, version.signature())
	buf.Write(header)
	buf.Write(encoding.UTF8ToFixedString(v.ModelName, version.ModelNameSize()))

	w := func(value any) {
		// bytes.Buffer writes cannot fail.
		_ = binary.Write(&buf, binary.LittleEndian, value)
	}

	w(uint32(len(v.Bones)))
	for i := range v.Bones {
		k := &v.Bones[i]
		buf.Write(encoding.UTF8ToFixedString(k.Name, BoneNameSize))
		w(k.Frame)
		w(k.Position)
		w(k.Rotation)
		buf.Write(k.Interpolation[:])
	}

	w(uint32(len(v.Morphs)))
	for _, k := range v.Morphs {
		buf.Write(encoding.UTF8ToFixedString(k.Name, BoneNameSize))
		w(k.Frame)
		w(k.Weight)
	}

	w(uint32(len(v.Cameras)))
	for i := range v.Cameras {
		k := &v.Cameras[i]
		w(k.Frame)
		w(k.Distance)
		w(k.Position)
		w(k.Angle)
		buf.Write(k.Interpolation[:])
		w(k.FOV)
		// The flag is stored inverted: 0 means perspective.
		if k.Perspective {
			buf.WriteByte(0)
		} else {
			buf.WriteByte(1)
		}
	}

	w(uint32(len(v.Lights)))
	for _, k := range v.Lights {
		w(k.Frame)
		w(k.Color)
		w(k.Direction)
	}

	w(uint32(len(v.SelfShadows)))
	for _, k := range v.SelfShadows {
		w(k.Frame)
		buf.WriteByte(k.Mode)
		w(k.Distance)
	}

	w(uint32(len(v.ShowIK)))
	for _, k := range v.ShowIK {
		w(k.Frame)
		buf.WriteByte(boolByte(k.Visible))
		w(uint32(len(k.IK)))
		for _, s := range k.IK {
			buf.Write(encoding.UTF8ToFixedString(s.Name, IKNameSize))
			buf.WriteByte(boolByte(s.Enabled))
		}
	}

	return buf.Bytes()
}

// WriteVMDFile encodes the motion and writes it to path.
func WriteVMDFile(path string, v *VMD) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, v.Encode(), 0644)
}

// MaxFrame returns the last frame referenced by any record.
func (v *VMD) MaxFrame() uint32 {
	var maxFrame uint32
	bump := func(f uint32) {
		if f > maxFrame {
			maxFrame = f
		}
	}
	for i := range v.Bones {
		bump(v.Bones[i].Frame)
	}
	for _, k := range v.Morphs {
		bump(k.Frame)
	}
	for i := range v.Cameras {
		bump(v.Cameras[i].Frame)
	}
	for _, k := range v.Lights {
		bump(k.Frame)
	}
	for _, k := range v.SelfShadows {
		bump(k.Frame)
	}
	for _, k := range v.ShowIK {
		bump(k.Frame)
	}
	return maxFrame
}

func parseVMDSignature(data []byte) (VMDVersion, error) {
	if len(data) < VMDHeaderSize {
		return 0, ErrTruncatedVMDData
	}
	signature := string(bytes.TrimRight(data[:VMDHeaderSize], "\x00"))
	switch {
	case strings.HasPrefix(signature, vmdSignatureV2):
		return VMDVersion2, nil
	case strings.HasPrefix(signature, vmdSignatureV1):
		return VMDVersion1, nil
	default:
		return 0, ErrInvalidVMDHeader
	}
}

func readCount(data []byte, offset int, section string) (uint32, error) {
	if len(data)-offset < 4 {
		return 0, fmt.Errorf("%w: reading %s count", ErrTruncatedVMDData, section)
	}
	return binary.LittleEndian.Uint32(data[offset:]), nil
}

// readSection skips the count field and decodes n records.
func readSection(r *bytes.Reader, n int, parse func(i int) error) error {
	if r.Len() == 0 {
		return nil
	}
	if _, err := r.Seek(4, io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: skipping count", ErrTruncatedVMDData)
	}
	for i := 0; i < n; i++ {
		if err := parse(i); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

func parseBone(r *bytes.Reader, k *VMDBoneKeyframe) error {
	name, err := readFixedString(r, BoneNameSize)
	if err != nil {
		return err
	}
	k.Name = name
	if err := binary.Read(r, binary.LittleEndian, &k.Frame); err != nil {
		return fmt.Errorf("%w: reading frame", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.Position); err != nil {
		return fmt.Errorf("%w: reading position", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.Rotation); err != nil {
		return fmt.Errorf("%w: reading rotation", ErrTruncatedVMDData)
	}
	if _, err := io.ReadFull(r, k.Interpolation[:]); err != nil {
		return fmt.Errorf("%w: reading interpolation", ErrTruncatedVMDData)
	}
	sanitize(k.Position[:], 0)
	sanitize(k.Rotation[:3], 0)
	sanitize(k.Rotation[3:], 1)
	return nil
}

func parseMorph(r *bytes.Reader, k *VMDMorphKeyframe) error {
	name, err := readFixedString(r, BoneNameSize)
	if err != nil {
		return err
	}
	k.Name = name
	if err := binary.Read(r, binary.LittleEndian, &k.Frame); err != nil {
		return fmt.Errorf("%w: reading frame", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.Weight); err != nil {
		return fmt.Errorf("%w: reading weight", ErrTruncatedVMDData)
	}
	return nil
}

func parseCamera(r *bytes.Reader, k *VMDCameraKeyframe) error {
	if err := binary.Read(r, binary.LittleEndian, &k.Frame); err != nil {
		return fmt.Errorf("%w: reading frame", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.Distance); err != nil {
		return fmt.Errorf("%w: reading distance", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.Position); err != nil {
		return fmt.Errorf("%w: reading position", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.Angle); err != nil {
		return fmt.Errorf("%w: reading angle", ErrTruncatedVMDData)
	}
	if _, err := io.ReadFull(r, k.Interpolation[:]); err != nil {
		return fmt.Errorf("%w: reading interpolation", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.FOV); err != nil {
		return fmt.Errorf("%w: reading fov", ErrTruncatedVMDData)
	}
	flag, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: reading perspective flag", ErrTruncatedVMDData)
	}
	k.Perspective = flag == 0
	return nil
}

func parseLight(r *bytes.Reader, k *VMDLightKeyframe) error {
	if err := binary.Read(r, binary.LittleEndian, &k.Frame); err != nil {
		return fmt.Errorf("%w: reading frame", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.Color); err != nil {
		return fmt.Errorf("%w: reading color", ErrTruncatedVMDData)
	}
	if err := binary.Read(r, binary.LittleEndian, &k.Direction); err != nil {
		return fmt.Errorf("%w: reading direction", ErrTruncatedVMDData)
	}
	return nil
}

func parseSelfShadow(r *bytes.Reader, k *VMDSelfShadowKeyframe) error {
	if err := binary.Read(r, binary.LittleEndian, &k.Frame); err != nil {
		return fmt.Errorf("%w: reading frame", ErrTruncatedVMDData)
	}
	mode, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: reading mode", ErrTruncatedVMDData)
	}
	k.Mode = mode
	if err := binary.Read(r, binary.LittleEndian, &k.Distance); err != nil {
		return fmt.Errorf("%w: reading distance", ErrTruncatedVMDData)
	}
	return nil
}

func parseShowIK(r *bytes.Reader, k *VMDShowIKKeyframe) error {
	if err := binary.Read(r, binary.LittleEndian, &k.Frame); err != nil {
		return fmt.Errorf("%w: reading frame", ErrTruncatedVMDData)
	}
	visible, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: reading visibility", ErrTruncatedVMDData)
	}
	k.Visible = visible != 0

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: reading IK count", ErrTruncatedVMDData)
	}
	k.IK = make([]VMDIKState, count)
	for i := range k.IK {
		name, err := readFixedString(r, IKNameSize)
		if err != nil {
			return err
		}
		enabled, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("%w: reading IK state", ErrTruncatedVMDData)
		}
		k.IK[i] = VMDIKState{Name: name, Enabled: enabled != 0}
	}
	return nil
}

func readFixedString(r *bytes.Reader, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: reading name", ErrTruncatedVMDData)
	}
	return encoding.FixedStringToUTF8(buf), nil
}

// sanitize replaces NaN/Inf components, which some exporters emit for
// untouched channels.
func sanitize(values []float32, fallback float32) {
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			values[i] = fallback
		}
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
