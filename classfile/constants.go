package classfile

import "strconv"

// Magic is the 4-byte marker at offset 0 of every class file.
const Magic uint32 = 0xCAFEBABE

const (
	// poolCountOffset is the offset of constant_pool_count, after magic and
	// minor/major version.
	poolCountOffset = 8
	// poolOffset is the offset of the first constant pool entry.
	poolOffset = 10
)

// Tag is a constant pool entry tag.
type Tag byte

// Constant pool tags.
const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldRef           Tag = 9
	TagMethodRef          Tag = 10
	TagInterfaceMethodRef Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

var tagNames = map[Tag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldRef:           "Fieldref",
	TagMethodRef:          "Methodref",
	TagInterfaceMethodRef: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

// String returns the JVMS name of the tag.
func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// payloadSize returns the fixed payload width of a tag and whether the tag
// is recognized. Utf8 reports 0: its payload is length-prefixed.
func payloadSize(t Tag) (int, bool) {
	switch t {
	case TagUtf8:
		return 0, true
	case TagString, TagClass, TagMethodType, TagModule, TagPackage:
		return 2, true
	case TagMethodHandle:
		return 3, true
	case TagInteger, TagFloat, TagFieldRef, TagMethodRef, TagInterfaceMethodRef,
		TagNameAndType, TagDynamic, TagInvokeDynamic:
		return 4, true
	case TagLong, TagDouble:
		return 8, true
	}
	return 0, false
}

// wide reports whether the entry occupies two pool slots.
func (t Tag) wide() bool {
	return t == TagLong || t == TagDouble
}

const (
	arrayMarker     = '['
	objectMarker    = 'L'
	objectTerminate = ';'
)
